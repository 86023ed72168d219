package main

import (
	"github.com/architeacher/svc-message-relay/internal/runtime"
)

func main() {
	runtime.NewSubscriber().Run()
}
