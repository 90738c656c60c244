package future

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwait(t *testing.T) {
	type testCase struct {
		name    string
		future  *Future[int]
		wantVal int
		wantErr bool
	}

	testCases := []testCase{
		{
			name:    "settled value",
			future:  FromValue(42),
			wantVal: 42,
		},
		{
			name:    "settled error",
			future:  FromError[int](errors.New("failure")),
			wantErr: true,
		},
		{
			name: "delayed value",
			future: New(func() (int, error) {
				time.Sleep(5 * time.Millisecond)
				return 200, nil
			}),
			wantVal: 200,
		},
		{
			name: "delayed failure",
			future: New(func() (int, error) {
				time.Sleep(5 * time.Millisecond)
				return 0, errors.New("late failure")
			}),
			wantErr: true,
		},
		{
			name:    "chained",
			future:  Then(FromValue(20), func(v int) (int, error) { return v + 1, nil }),
			wantVal: 21,
		},
		{
			name: "chained failure skips fn",
			future: Then(FromError[int](errors.New("upstream")), func(v int) (int, error) {
				return 99, nil
			}),
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, err := tc.future.Await()

			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error: %v, got: %v", tc.wantErr, err)
			}

			if val != tc.wantVal {
				t.Fatalf("expected value: %d, got: %d", tc.wantVal, val)
			}
		})
	}
}

func TestAwaitContext(t *testing.T) {
	release := make(chan struct{})
	f := New(func() (string, error) {
		<-release
		return "done", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.AwaitContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got: %v", err)
	}

	close(release)
	<-f.Done()
	v, err := f.AwaitContext(context.Background())
	if err != nil || v != "done" {
		t.Fatalf("expected done, got: %q, %v", v, err)
	}
}
