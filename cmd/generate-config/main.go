package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/ghostwriter/internal/config"
)

func main() {
	constantsFile := flag.String("constants", "", "also write Default* constants to this Go file")
	flag.Parse()

	// Create a config with defaults applied
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	header := "# Ghostwriter Configuration Example\n# Copy this file to config.yaml and customize as needed.\n# Environment variables (GHOSTWRITER_*, GEMINI_API_KEY, S3_*, AWS_*) override these values.\n\n"
	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if flag.NArg() > 0 {
		outputFile = flag.Arg(0)
	}

	if outputFile == "-" {
		fmt.Print(output)
	} else {
		if err := os.WriteFile(outputFile, []byte(output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated example config: %s\n", outputFile)
	}

	if *constantsFile != "" {
		src, err := constants(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating constants: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*constantsFile, src, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated constants: %s\n", *constantsFile)
	}
}

// constants renders one Default<Path> constant per field carrying a
// default tag.
func constants(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by generate-config; DO NOT EDIT.\n\npackage config\n\nconst (\n")
	writeConstants(&buf, "Default", reflect.ValueOf(cfg).Elem())
	buf.WriteString(")\n")
	return format.Source(buf.Bytes())
}

func writeConstants(buf *bytes.Buffer, prefix string, v reflect.Value) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		name := prefix + fieldType.Name

		if field.Kind() == reflect.Struct {
			writeConstants(buf, name, field)
			continue
		}
		if fieldType.Tag.Get("default") == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			fmt.Fprintf(buf, "\t%s = %s\n", name, strconv.Quote(field.String()))
		case reflect.Bool:
			fmt.Fprintf(buf, "\t%s = %t\n", name, field.Bool())
		case reflect.Int:
			fmt.Fprintf(buf, "\t%s = %d\n", name, field.Int())
		case reflect.Float64:
			fmt.Fprintf(buf, "\t%s = %s\n", name, strconv.FormatFloat(field.Float(), 'g', -1, 64))
		}
	}
}
