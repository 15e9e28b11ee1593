package testsupport

import (
	"context"
	"sync"

	"narrator/internal/tts"
)

// FakeResponse scripts the engine's answer for one call.
type FakeResponse struct {
	Audio *tts.Audio
	Err   error
}

// FakeEngine is a scripted tts.Engine. Responses are keyed by request text;
// texts without a scripted response get Default, or 0.1 s of raw PCM when
// Default is nil.
type FakeEngine struct {
	mu        sync.Mutex
	name      string
	responses map[string]FakeResponse
	Default   *FakeResponse
	requests  []tts.Request
	// OnCall runs before each response is returned.
	OnCall func(ctx context.Context, req tts.Request)
}

// NewFakeEngine creates a FakeEngine registered under name.
func NewFakeEngine(name string) *FakeEngine {
	return &FakeEngine{name: name, responses: make(map[string]FakeResponse)}
}

// Respond scripts the response for text.
func (f *FakeEngine) Respond(text string, resp FakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[text] = resp
}

// Fail scripts an error for text.
func (f *FakeEngine) Fail(text string, err error) {
	f.Respond(text, FakeResponse{Err: err})
}

// Name returns the engine identifier.
func (f *FakeEngine) Name() string { return f.name }

// Synthesize records req and returns the scripted response.
func (f *FakeEngine) Synthesize(ctx context.Context, req tts.Request) (*tts.Audio, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	resp, ok := f.responses[req.Text]
	def := f.Default
	onCall := f.OnCall
	f.mu.Unlock()

	if onCall != nil {
		onCall(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		if def != nil {
			resp = *def
		} else {
			resp = FakeResponse{Audio: &tts.Audio{Data: PCM(4800, 0), FormatTag: "audio/L16;codec=pcm;rate=24000"}}
		}
	}
	return resp.Audio, resp.Err
}

// Requests returns a copy of every request received.
func (f *FakeEngine) Requests() []tts.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tts.Request(nil), f.requests...)
}

// Texts returns the text of every request received, in order.
func (f *FakeEngine) Texts() []string {
	reqs := f.Requests()
	texts := make([]string, 0, len(reqs))
	for _, req := range reqs {
		texts = append(texts, req.Text)
	}
	return texts
}
