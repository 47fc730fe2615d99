package delete_schedule

import "context"

type ScheduleService interface {
	Delete(ctx context.Context, key string, privileged bool) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
