package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/revelohq/revelo/core/event"
	"github.com/revelohq/revelo/core/user"
)

func Test_eventAPI_create(t *testing.T) {
	app := newTestApp(t)

	inst, token := app.registerInstitute(t, "MIT Pune", "office@mitpune.test", true)
	userToken := app.userToken(t, user.User{ID: "usr-1"})

	t.Run("ok", func(t *testing.T) {
		ev := app.createEvent(t, token)
		if ev.InstituteID != inst.ID {
			t.Errorf("failed! ownership = %v; want %v", ev.InstituteID, inst.ID)
		}
		if !ev.PlatformPaymentDone || ev.PaymentID == "" {
			t.Errorf("failed! payment not recorded: %+v", ev)
		}
		if ev.Published {
			t.Errorf("failed! created event must not be published")
		}
	})

	badBody := newEventBody(app.gateway.ValidSignature)
	delete(badBody, "title")

	tests := []httpTest{
		{name: "no token", method: http.MethodPost, path: "/events/create",
			body:     marchallObj(t, newEventBody(app.gateway.ValidSignature)),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "not authenticated"})},
		{name: "user token rejected", method: http.MethodPost, path: "/events/create",
			body: marchallObj(t, newEventBody(app.gateway.ValidSignature)), token: userToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "bad payment signature", method: http.MethodPost, path: "/events/create",
			body: marchallObj(t, newEventBody("forged")), token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: event.ErrPaymentNotVerified.Error()})},
		{name: "missing title", method: http.MethodPost, path: "/events/create",
			body: marchallObj(t, badBody), token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, echo.Map{"title": "this field is required"})},
	}
	runHTTPTests(t, app, tests)
}

func Test_eventAPI_publishFlow(t *testing.T) {
	app := newTestApp(t)

	_, token := app.registerInstitute(t, "MIT Pune", "office@mitpune.test", true)
	ev := app.createEvent(t, token)

	t.Run("publish needs a sub-event", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/events/"+ev.ID+"/publish", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: event.ErrNoSubEvents.Error()})}, rec)
	})

	var se event.SubEvent
	t.Run("create sub-event", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/sub-events/create", token,
			marchallObj(t, newSubEventBody(ev.ID)))
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &se); err != nil {
			t.Fatal(err)
		}
		if se.Price != 100 { // posted as a string
			t.Errorf("failed! price = %v; want 100", se.Price)
		}
	})

	t.Run("publish", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/events/"+ev.ID+"/publish", token)
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var got event.Event
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if !got.Published {
			t.Errorf("failed! event not published")
		}
	})

	t.Run("public detail resolves sub-events", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/events/"+ev.ID)
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var detail event.Detail
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatal(err)
		}
		if len(detail.SubEvents) != 1 || detail.SubEvents[0].ID != se.ID {
			t.Errorf("failed! subEvents = %+v", detail.SubEvents)
		}
	})

	t.Run("delete sub-event", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/institute/delete-subevent", token,
			marchallObj(t, echo.Map{"eventId": ev.ID, "subEventId": se.ID}))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK,
			wantData: marchallObj(t, echo.Map{"success": true})}, rec)

		req, rec = newRequest(http.MethodGet, "/events/"+ev.ID)
		app.server.ServeHTTP(rec, req)
		var detail event.Detail
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatal(err)
		}
		if len(detail.SubEvents) != 0 {
			t.Errorf("failed! subEvents = %+v", detail.SubEvents)
		}
	})

	tests := []httpTest{
		{name: "unknown event", path: "/events/nope", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: event.ErrNotFound.Error()})},
		{name: "sub-event for unknown event", method: http.MethodPost, path: "/sub-events/create",
			body: marchallObj(t, newSubEventBody("nope")), token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: event.ErrNotFound.Error()})},
	}
	runHTTPTests(t, app, tests)
}

func Test_eventAPI_update(t *testing.T) {
	app := newTestApp(t)

	_, token := app.registerInstitute(t, "MIT Pune", "office@mitpune.test", true)
	ev := app.createEvent(t, token)

	req, rec := newAuthRequest(http.MethodPut, "/events/"+ev.ID, token,
		marchallObj(t, echo.Map{"description": "updated blurb"}))
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
	}
	var got event.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Description != "updated blurb" {
		t.Errorf("failed! description = %v", got.Description)
	}
	if got.Title != ev.Title {
		t.Errorf("failed! title must be immutable")
	}
}

func Test_eventAPI_media(t *testing.T) {
	app := newTestApp(t)

	_, token := app.registerInstitute(t, "MIT Pune", "office@mitpune.test", true)
	ev := app.createEvent(t, token)

	flyerBody := echo.Map{
		"eventId":     ev.ID,
		"flyerUrl":    "https://cdn.local/flyer.png",
		"description": "main flyer",
		"orientation": "portrait",
		"width":       1080,
		"height":      1920,
		"displayType": "feed",
	}

	t.Run("add flyer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/events/add-flyer", token, marchallObj(t, flyerBody))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})

	t.Run("duplicate flyer URL", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/events/add-flyer", token, marchallObj(t, flyerBody))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: event.ErrFlyerExists.Error()})}, rec)
	})

	t.Run("add video", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/events/add-video", token, marchallObj(t, echo.Map{
			"eventId":      ev.ID,
			"videoUrl":     "https://cdn.local/teaser.mp4",
			"thumbnailUrl": "https://cdn.local/teaser.png",
			"description":  "teaser",
		}))
		app.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
	})

	t.Run("detail resolves media", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/events/"+ev.ID)
		app.server.ServeHTTP(rec, req)

		var detail event.Detail
		if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
			t.Fatal(err)
		}
		if len(detail.Flyers) != 1 || len(detail.Videos) != 1 {
			t.Errorf("failed! flyers = %d, videos = %d", len(detail.Flyers), len(detail.Videos))
		}
	})
}

func Test_paymentAPI_createOrder(t *testing.T) {
	app := newTestApp(t)

	inst, token := app.registerInstitute(t, "MIT Pune", "office@mitpune.test", true)

	tests := []httpTest{
		{name: "no token", method: http.MethodPost, path: "/payment/create-order",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "not authenticated"})},
	}
	runHTTPTests(t, app, tests)

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/payment/create-order", token)
		app.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var order struct {
			ID      string `json:"id"`
			Receipt string `json:"receipt"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
			t.Fatal(err)
		}
		if order.ID == "" || order.Receipt != "platform-fee-"+inst.ID {
			t.Errorf("failed! order = %+v", order)
		}
	})
}
