package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"artlens-pro/internal/artstyle"
	"artlens-pro/internal/datauri"
	"artlens-pro/internal/generation"
)

var (
	ErrEmptyImage   = errors.New("image is empty")
	ErrUnknownStyle = errors.New("unknown style")
)

const (
	msgMissingCredential = "API Key is missing. Please check your environment configuration."
	msgMalformedInput    = "The selected image could not be read. Please choose another file."
	msgNoImage           = "No image data returned from the model. Please try again."
	msgGenericFailure    = "Failed to generate image. Please try again."
)

type Generator interface {
	Generate(ctx context.Context, sourceImage string, style artstyle.ID, intensity int) (string, error)
}

type Options struct {
	Generator      Generator
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Controller owns the single SessionState. Every mutation happens under mu, and
// subscribers see the state after each one.
type Controller struct {
	mu      sync.Mutex
	state   State
	gen     Generator
	logger  zerolog.Logger
	timeout time.Duration

	subs    map[int]chan State
	nextSub int

	inflight sync.WaitGroup
}

func NewController(opts Options) *Controller {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 240 * time.Second
	}

	return &Controller{
		state:   defaultState(),
		gen:     opts.Generator,
		logger:  opts.Logger,
		timeout: timeout,
		subs:    make(map[int]chan State),
	}
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SelectImage(image string) (State, error) {
	if image == "" {
		return c.Snapshot(), ErrEmptyImage
	}

	return c.update(func(st *State) {
		st.OriginalImage = image
		st.GeneratedImage = ""
		st.IsGenerating = false
		st.LastError = ""
		st.ErrorKind = ErrorNone
		st.Seq++
	}), nil
}

func (c *Controller) SetStyle(id artstyle.ID) (State, error) {
	if !id.Valid() {
		return c.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownStyle, id)
	}
	return c.update(func(st *State) {
		st.Style = id
	}), nil
}

func (c *Controller) SetIntensity(v int) State {
	return c.update(func(st *State) {
		st.Intensity = artstyle.ClampIntensity(v)
	})
}

// Reset returns to Idle and keeps the style controls. A request still in flight
// is not cancelled; its result is dropped when it arrives.
func (c *Controller) Reset() State {
	return c.update(func(st *State) {
		next := defaultState()
		next.Style = st.Style
		next.Intensity = st.Intensity
		next.Seq = st.Seq + 1
		*st = next
	})
}

func (c *Controller) DismissError() State {
	return c.update(func(st *State) {
		st.LastError = ""
		st.ErrorKind = ErrorNone
	})
}

// PromptPreview is the prompt the next Generate call would send.
func (c *Controller) PromptPreview() string {
	st := c.Snapshot()
	return generation.PreviewPrompt(st.Style, st.Intensity)
}

// Result returns the decoded generated image.
func (c *Controller) Result() (datauri.Blob, bool) {
	st := c.Snapshot()
	if st.GeneratedImage == "" {
		return datauri.Blob{}, false
	}
	blob, err := datauri.Parse(st.GeneratedImage)
	if err != nil {
		return datauri.Blob{}, false
	}
	return blob, true
}

type request struct {
	seq       uint64
	image     string
	style     artstyle.ID
	intensity int
}

// Generate dispatches one generation for the current image and controls. It is
// a no-op returning false when there is no image or a request is in flight.
// The returned channel closes once the request has resolved.
func (c *Controller) Generate(ctx context.Context) (<-chan struct{}, bool) {
	c.mu.Lock()
	if !c.state.CanGenerate() {
		c.mu.Unlock()
		return nil, false
	}

	c.state.Seq++
	c.state.IsGenerating = true
	c.state.GeneratedImage = ""
	c.state.LastError = ""
	c.state.ErrorKind = ErrorNone
	c.state.UpdatedAt = time.Now()

	req := request{
		seq:       c.state.Seq,
		image:     c.state.OriginalImage,
		style:     c.state.Style,
		intensity: c.state.Intensity,
	}
	c.publishLocked()
	c.inflight.Add(1)
	c.mu.Unlock()

	c.logger.Info().
		Uint64("seq", req.seq).
		Str("style", string(req.style)).
		Int("intensity", req.intensity).
		Msg("generation dispatched")

	done := make(chan struct{})
	parent := context.WithoutCancel(ctx)

	go func() {
		defer c.inflight.Done()
		defer close(done)

		reqCtx, cancel := context.WithTimeout(parent, c.timeout)
		defer cancel()

		var (
			result string
			err    error
		)
		if c.gen == nil {
			err = errors.New("generator is not configured")
		} else {
			result, err = c.gen.Generate(reqCtx, req.image, req.style, req.intensity)
		}
		c.complete(req.seq, result, err)
	}()

	return done, true
}

// Wait blocks until every dispatched request has resolved.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() when ctx ends first;
// the requests keep running and their results are still applied.
func (c *Controller) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) complete(seq uint64, result string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.state.Seq {
		c.logger.Info().
			Uint64("seq", seq).
			Uint64("current_seq", c.state.Seq).
			Msg("discarding stale generation result")
		return
	}

	c.state.IsGenerating = false
	if err != nil {
		msg, kind := describeError(err)
		c.state.GeneratedImage = ""
		c.state.LastError = msg
		c.state.ErrorKind = kind
		c.logger.Warn().Err(err).Uint64("seq", seq).Str("kind", string(kind)).Msg("generation failed")
	} else {
		c.state.GeneratedImage = result
		c.state.LastError = ""
		c.state.ErrorKind = ErrorNone
		c.logger.Info().Uint64("seq", seq).Msg("generation applied")
	}
	c.state.UpdatedAt = time.Now()
	c.publishLocked()
}

func describeError(err error) (string, ErrorKind) {
	switch {
	case errors.Is(err, generation.ErrMissingCredential):
		return msgMissingCredential, ErrorMissingCredential
	case errors.Is(err, generation.ErrMalformedInput):
		return msgMalformedInput, ErrorInvalidInput
	case errors.Is(err, generation.ErrNoImageReturned):
		return msgNoImage, ErrorRemote
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again.", ErrorRemote
	}

	var remote *generation.RemoteError
	if errors.As(err, &remote) {
		switch remote.StatusCode {
		case 401, 403:
			return "The API key was rejected. Please check your environment configuration.", ErrorRemote
		case 429:
			return "The image service is rate limited. Please try again in a moment.", ErrorRemote
		case 500, 502, 503, 504:
			return "The image service is unavailable. Please try again later.", ErrorRemote
		}
	}
	return msgGenericFailure, ErrorRemote
}

// Subscribe returns a channel receiving the state after every change. Slow
// readers only see the latest state.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan State, 1)
	ch <- c.state
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Controller) update(fn func(*State)) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.state)
	c.state.UpdatedAt = time.Now()
	c.publishLocked()
	return c.state
}

func (c *Controller) publishLocked() {
	st := c.state
	for _, ch := range c.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
