package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/danmuck/fileget/internal/config"
)

func main() {
	output := flag.String("output", config.DefaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", config.DefaultPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	show := flag.Bool("print", false, "print the config template to stdout")
	flag.Parse()

	if *show {
		fmt.Print(config.Template())
		return
	}

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s (timeout=%s output_dir=%s)", *input, cfg.Session.Timeout, cfg.OutputDir)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
