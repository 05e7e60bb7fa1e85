package dummymail

import (
	"log"
	"sync"

	"github.com/revelohq/revelo/core"
)

// service captures rendered messages instead of sending them; sends run
// synchronously so tests can assert right after the call.
type service struct {
	mu            sync.Mutex
	sent          []core.EmailMessage
	disableOutput bool
}

var _ core.EmailService = (*service)(nil)

func NewService() *service {
	return &service{disableOutput: true}
}

// NewConsoleService echoes each message to the log; used in DEV mode
// instead of a live provider.
func NewConsoleService() *service {
	return &service{}
}

func (svc *service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			log.Printf("rendering email %q: %v", msg.Subject, err)
			continue
		}
		if !msg.HasRecipients() || !msg.HasContent() {
			continue
		}
		if !svc.disableOutput {
			log.Printf("To: %v\nSubject: %s\n%s\n", msg.To, msg.Subject, msg.TextContent)
		}
		svc.mu.Lock()
		svc.sent = append(svc.sent, *msg)
		svc.mu.Unlock()
	}
}

// SentMessages returns a copy of everything captured so far.
func (svc *service) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.EmailMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}

func (svc *service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sent = nil
}
