package foreign

import (
	"jasper/internal/object"
	"jasper/internal/util/future"
	"time"
)

func timeNamespace() map[string]object.Value {
	return map[string]object.Value{
		"now":   fnTimeNow(),
		"sleep": fnTimeSleep(),
	}
}

// fnTimeNow returns the wall clock in unix milliseconds.
func fnTimeNow() *object.Builtin {
	return &object.Builtin{
		Name:  "Time.now",
		Arity: object.Exactly(0),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			return number(float64(time.Now().UnixMilli())), nil
		},
	}
}

// fnTimeSleep suspends the caller for ms milliseconds and resolves to ms.
func fnTimeSleep() *object.Builtin {
	return &object.Builtin{
		Name:  "Time.sleep",
		Arity: object.Exactly(1),
		Fn: func(ctx object.CallContext, args ...object.Value) (object.Value, error) {
			ms, err := unpackNumber("Time.sleep", 1, args[0])
			if err != nil {
				return nil, err
			}
			if ms <= 0 {
				return &object.Pending{Label: "Time.sleep", Future: future.FromValue[object.Value](number(ms))}, nil
			}
			runCtx := ctx.Context()
			return object.NewPending("Time.sleep", func() (object.Value, error) {
				timer := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
				defer timer.Stop()
				select {
				case <-timer.C:
					return number(ms), nil
				case <-runCtx.Done():
					return nil, runCtx.Err()
				}
			}), nil
		},
	}
}
