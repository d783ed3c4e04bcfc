package logging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDefaultLoggerIsSingleton(t *testing.T) {
	repeat := 5
	var wait sync.WaitGroup
	loggerChan := make(chan *zap.Logger, repeat)

	for i := 0; i < repeat; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			loggerChan <- DefaultLogger()
		}()
	}
	wait.Wait()

	l := DefaultLogger()
	for i := 0; i < repeat; i++ {
		assert.Same(t, l, <-loggerChan)
	}
}

func TestFromContext(t *testing.T) {
	l1 := FromContext(context.Background())
	assert.NotNil(t, l1)

	named := l1.Named("test")
	ctx := WithLogger(context.Background(), named)
	assert.Same(t, named, FromContext(ctx))

	assert.NotNil(t, FromContext(nil))
}
