package quality

import (
	"context"
	"fmt"
	"time"

	"intake-app/apperror"

	"github.com/gofiber/fiber/v2"
)

type Request struct {
	Product  string `json:"product"`
	ImageRef string `json:"image_ref"`
	Notes    string `json:"notes,omitempty"`
}

// Diagnoser assesses produce. Every failure is reported as Unavailable.
type Diagnoser interface {
	Diagnose(ctx context.Context, req Request) (Assessment, error)
}

type DiagnoserFunc func(ctx context.Context, req Request) (Assessment, error)

func (f DiagnoserFunc) Diagnose(ctx context.Context, req Request) (Assessment, error) {
	return f(ctx, req)
}

// HTTPDiagnoser posts the request as JSON to an assessment endpoint.
type HTTPDiagnoser struct {
	url     string
	timeout time.Duration
}

func NewHTTPDiagnoser(url string, timeout time.Duration) *HTTPDiagnoser {
	return &HTTPDiagnoser{url: url, timeout: timeout}
}

func (d *HTTPDiagnoser) Diagnose(ctx context.Context, req Request) (Assessment, error) {
	var a Assessment
	if d.url == "" {
		return a, apperror.Unavailable("quality check unavailable: no service configured", nil)
	}

	timeout := d.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout <= 0 {
			timeout = left
		}
	}
	if timeout <= 0 {
		return a, apperror.Unavailable("quality check unavailable", context.DeadlineExceeded)
	}

	agent := fiber.Post(d.url).JSON(req).Timeout(timeout)
	code, body, errs := agent.Struct(&a)
	if len(errs) > 0 {
		return Assessment{}, apperror.Unavailable("quality check unavailable", errs[0])
	}
	if code != fiber.StatusOK {
		return Assessment{}, apperror.Unavailable(
			fmt.Sprintf("quality check unavailable: service answered %d", code),
			fmt.Errorf("%s", truncate(body, 200)))
	}
	return a, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
