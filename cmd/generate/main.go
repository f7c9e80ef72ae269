package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slide-generator/cmd"
	"slide-generator/internal/config"
	"slide-generator/internal/form"
	"slide-generator/internal/indicator"
	"slide-generator/internal/submission"
	"slide-generator/pkg/api"
	"syscall"
	"time"
)

var (
	title     = flag.String("title", "", "presentation title")
	presenter = flag.String("presenter", "", "presenter name")
	slides    = flag.String("slides", "", "number of slides")
	userText  = flag.String("text", "", "text the slides are generated from")
	images    = flag.Bool("images", false, "insert images into the slides")
	template  = flag.String("template", "", "template choice")

	page    = flag.String("page", "", "read the form from a saved generator page instead of the flags")
	browser = flag.String("browser", "", "read the form from the live generator page at this url")
	timeout = flag.Duration("timeout", 0, "overrides REQUEST_TIMEOUT")
)

func flagForm() *form.StaticForm {
	f := form.NewStaticForm().
		SetValue(api.FieldPresentationTitle, *title).
		SetValue(api.FieldPresenterName, *presenter).
		SetValue(api.FieldNumberOfSlide, *slides).
		SetValue(api.FieldUserText, *userText).
		SetChecked(api.FieldInsertImage, *images)
	if *template != "" {
		f.AddChoice(api.FieldTemplateChoice, *template, true)
	}
	return f
}

func pageForm(path string) form.Source {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("error opening page %s: %v", path, err)
	}
	defer file.Close()

	f, err := form.ParseHTMLForm(file)
	if err != nil {
		log.Fatalf("error reading form from %s: %v", path, err)
	}
	return f
}

func main() {
	cfg := cmd.MustLoadConfig()

	if err := run(cfg); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var src form.Source
	switch {
	case *page != "" && *browser != "":
		log.Fatalf("-page and -browser are mutually exclusive")
	case *page != "":
		src = pageForm(*page)
	case *browser != "":
		f, closeBrowser, err := form.OpenBrowserForm(ctx, *browser, 30*time.Second)
		if err != nil {
			log.Fatalf("error opening generator page in browser: %v", err)
		}
		defer closeBrowser()
		src = f
	default:
		src = flagForm()
	}

	requestTimeout := cfg.RequestTimeout
	if *timeout > 0 {
		requestTimeout = *timeout
	}

	controller := submission.NewController(src,
		indicator.Multi(indicator.NewSpinner(os.Stderr, "generating presentation"), &indicator.Logger{}),
		submission.Config{
			BaseURL:           cfg.GeneratorURL,
			IndicatorInterval: cfg.IndicatorInterval,
			Timeout:           requestTimeout,
			Notifier: submission.NotifierFunc(func(err error) {
				fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
			}),
		},
	)

	res, err := controller.Submit(ctx)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, res.Raw, "", "  "); err != nil {
		out.Reset()
		out.Write(res.Raw)
	}
	fmt.Println(out.String())

	return nil
}
