package logger

import (
	"strings"

	"go.uber.org/fx/fxevent"
)

// FxLoggerAdapter routes fx lifecycle events into this package.
type FxLoggerAdapter struct{}

// NewFxLoggerAdapter is passed to fx.WithLogger.
func NewFxLoggerAdapter() fxevent.Logger {
	return &FxLoggerAdapter{}
}

// LogEvent implements fxevent.Logger.
func (l *FxLoggerAdapter) LogEvent(event fxevent.Event) {
	log := For("fx")
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		log.Debugf("start hook %s", shortFuncName(e.FunctionName))
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			log.Errorf("start hook %s failed: %v", shortFuncName(e.FunctionName), e.Err)
		}
	case *fxevent.OnStopExecuting:
		log.Debugf("stop hook %s", shortFuncName(e.FunctionName))
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			log.Errorf("stop hook %s failed: %v", shortFuncName(e.FunctionName), e.Err)
		}
	case *fxevent.Supplied:
		if e.Err != nil {
			log.Errorf("supply %s failed: %v", e.TypeName, e.Err)
		}
	case *fxevent.Provided:
		for _, name := range e.OutputTypeNames {
			log.Debugf("provided %s", name)
		}
		if e.Err != nil {
			log.Errorf("provide failed: %v", e.Err)
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			log.Errorf("invoke %s failed: %v", e.FunctionName, e.Err)
		}
	case *fxevent.Stopping:
		log.Infof("received %s, stopping", e.Signal)
	case *fxevent.Stopped:
		if e.Err != nil {
			log.Errorf("stop failed: %v", e.Err)
		}
	case *fxevent.RollingBack:
		log.Errorf("start failed, rolling back: %v", e.StartErr)
	case *fxevent.RolledBack:
		if e.Err != nil {
			log.Errorf("rollback failed: %v", e.Err)
		}
	case *fxevent.Started:
		if e.Err != nil {
			log.Errorf("start failed: %v", e.Err)
		} else {
			log.Infof("importer started")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			log.Errorf("logger init failed: %v", e.Err)
		}
	}
}

// shortFuncName drops the ".funcN" suffix fx reports for closures.
func shortFuncName(name string) string {
	if idx := strings.LastIndex(name, ".func"); idx != -1 {
		return name[:idx]
	}
	return name
}
