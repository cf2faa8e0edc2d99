package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/namecrawler/internal/cli"
	"github.com/ppiankov/namecrawler/internal/model"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, model.ErrInvalidConfig) || errors.Is(err, model.ErrDataIntegrity) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
