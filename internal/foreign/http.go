package foreign

import (
	"fmt"
	"io"
	"jasper/internal/object"
	"jasper/internal/util/future"
	"log/slog"
	"net/http"
	"time"
)

// fnFetch performs a GET request off the evaluation goroutine and resolves
// to (cons status body). Non-2xx responses are not errors.
func fnFetch(timeout time.Duration) *object.Builtin {
	client := &http.Client{Timeout: timeout}

	return &object.Builtin{
		Name:  "fetch",
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			url, err := unpackString("fetch", 1, args[0])
			if err != nil {
				return nil, err
			}
			label := "fetch " + url

			req, err := http.NewRequestWithContext(ctx.Context(), http.MethodGet, url, nil)
			if err != nil {
				// a malformed url fails at the await point like any other fetch error
				return &object.Pending{
					Label:  label,
					Future: future.FromError[object.Value](&object.HostError{Op: "fetch", Err: err}),
				}, nil
			}

			response := future.New(func() (fetchResponse, error) {
				return doFetch(client, req)
			})
			return &object.Pending{
				Label:  label,
				Future: future.Then(response, fetchResponse.value),
			}, nil
		},
	}
}

type fetchResponse struct {
	status int
	body   []byte
}

func (r fetchResponse) value() (object.Value, error) {
	return &object.Compound{Items: []object.Value{
		number(float64(r.status)),
		&object.String{Value: string(r.body)},
	}}, nil
}

func doFetch(client *http.Client, req *http.Request) (fetchResponse, error) {
	url := req.URL.String()

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("fetch failed", slog.String("url", url), slog.Any("error", err))
		return fetchResponse{}, &object.HostError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchResponse{}, &object.HostError{Op: "fetch", Err: fmt.Errorf("reading body of %s: %w", url, err)}
	}

	slog.Debug("fetch complete",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return fetchResponse{status: resp.StatusCode, body: body}, nil
}
