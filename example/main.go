package main

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	promise "github.com/asyncq/go-promise"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rt := promise.NewRuntime(promise.WithLogger(logger))

	var done sync.WaitGroup
	done.Add(3)

	// chaining: each handler runs on a later drain, in order
	rt.New(func(resolve promise.Resolver, _ promise.Rejector) {
		resolve(1)
	}).Then(func(value any) (any, error) {
		return value.(int) + 1, nil
	}, nil).Then(func(value any) (any, error) {
		fmt.Println("chain:", value)
		done.Done()
		return nil, nil
	}, nil)

	// recovery: a rejection handler can turn a failure back into a value
	rt.Reject(errors.New("boom")).Catch(func(reason error) (any, error) {
		return "recovered from " + reason.Error(), nil
	}).Then(func(value any) (any, error) {
		fmt.Println("catch:", value)
		done.Done()
		return nil, nil
	}, nil)

	// adoption: resolving with a thenable defers to it
	rt.Resolve(delayed{value: 42}).Then(func(value any) (any, error) {
		fmt.Println("thenable:", value)
		done.Done()
		return nil, nil
	}, nil)

	fmt.Println("nothing has run yet")
	done.Wait()
}

type delayed struct {
	value any
}

func (d delayed) Then(resolve promise.Resolver, _ promise.Rejector) {
	resolve(d.value)
}
