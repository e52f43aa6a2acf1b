package main

import (
	"context"
	"os"

	"github.com/zeroxbin/deploy/framework"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr, dialRPC))
}

func dialRPC(ctx context.Context, rpcURL string) (framework.Backend, error) {
	client, err := framework.Dial(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}
