package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/quest-engine/pkg/interactables"
	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

const markerTag = "ActivityMarker"

//go:embed bundle.schema.json
var bundleSchemaJSON string

var bundleSchema = jsonschema.MustCompileString("bundle.schema.json", bundleSchemaJSON)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <quests.json|quests.yaml> [objects.yaml]\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &BundleValidator{
		layoutFile: filepath.Join(filepath.Dir(filename), "objects.yaml"),
	}
	if len(os.Args) > 2 {
		validator.layoutFile = os.Args[2]
		validator.layoutRequired = true
	}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	for _, w := range validator.warnings {
		fmt.Println("warning:" + strings.TrimPrefix(w, "  -"))
	}
	fmt.Println("Quest bundle is valid!")
}

type BundleValidator struct {
	layoutFile     string
	layoutRequired bool
	errors         []string
	warnings       []string
}

func (v *BundleValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("quest bundle must have a .json, .yaml or .yml extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil

	b, err := decodeStrict(data, quest.FormatForPath(filename))
	if err != nil {
		return fmt.Errorf("file %s failed strict unmarshaling: %w", filename, err)
	}

	if err := v.validateSchema(data, quest.FormatForPath(filename)); err != nil {
		return err
	}

	for _, problem := range b.Validate() {
		v.addError(problem)
	}
	v.validateTags(b)

	if _, err := b.Graph(); err != nil {
		v.addError(err.Error())
	}

	if err := v.validateLayout(b); err != nil {
		return err
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func decodeStrict(data []byte, f quest.Format) (*quest.Bundle, error) {
	var b quest.Bundle
	if f == quest.FormatYAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return &b, nil
	}

	if !json.Valid(data) {
		return nil, errors.New("invalid JSON")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// validateSchema checks the raw document against the bundle schema. YAML is
// round-tripped through JSON so the schema sees JSON types.
func (v *BundleValidator) validateSchema(data []byte, f quest.Format) error {
	var doc any
	if f == quest.FormatYAML {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
		converted, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to convert YAML: %w", err)
		}
		data = converted
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	err := bundleSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	v.addSchemaErrors(ve)
	return nil
}

func (v *BundleValidator) addSchemaErrors(ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		v.addError(fmt.Sprintf("schema: %s: %s", loc, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		v.addSchemaErrors(cause)
	}
}

func (v *BundleValidator) validateTags(b *quest.Bundle) {
	for _, tag := range b.CompletionEvents {
		v.validateTagFormat("completion event", tag)
	}
	for _, tag := range b.GameStates {
		v.validateTagFormat("game state", tag)
	}
	if b.Story.CompletionEvent != "" {
		v.validateTagFormat("story completion event", b.Story.CompletionEvent)
	}
}

// validateLayout cross-checks the scene layout against the bundle. A missing
// default layout is not an error.
func (v *BundleValidator) validateLayout(b *quest.Bundle) error {
	data, err := os.ReadFile(v.layoutFile)
	if err != nil {
		if os.IsNotExist(err) && !v.layoutRequired {
			return nil
		}
		return fmt.Errorf("failed to read layout %s: %w", v.layoutFile, err)
	}
	fmt.Printf("Validating %s...\n", v.layoutFile)

	layout, err := interactables.DecodeLayout(data)
	if err != nil {
		return err
	}

	markers := make(map[string]bool)
	ids := make(map[string]bool)
	for _, obj := range layout.Objects {
		if obj.ID == "" {
			v.addError(fmt.Sprintf("layout object %q has no id", obj.Name))
			continue
		}
		if ids[obj.ID] {
			v.addError(fmt.Sprintf("layout object id %q is used more than once", obj.ID))
		}
		ids[obj.ID] = true

		if obj.Tag == markerTag {
			name := obj.Name
			if name == "" {
				name = obj.ID
			}
			markers[name] = true
		}
		if obj.Kind != "" {
			if _, ok := interaction.ParseKind(obj.Kind); !ok {
				v.addError(fmt.Sprintf("layout object %q has unknown kind %q", obj.ID, obj.Kind))
			}
		}
		if obj.Event != "" && len(b.CompletionEvents) > 0 && !slices.Contains(b.CompletionEvents, obj.Event) {
			v.addWarning(fmt.Sprintf("layout object %q raises %q which no quest or task listens for", obj.ID, obj.Event))
		}
	}

	for _, obj := range layout.Objects {
		if obj.Kind == interaction.KindKeypad.String() && obj.Door != "" && !ids[obj.Door] {
			v.addError(fmt.Sprintf("keypad %q links unknown door %q", obj.ID, obj.Door))
		}
	}

	for _, t := range b.Tasks {
		name := t.Marker
		if name == "" {
			name = t.Title
		}
		if !markers[name] {
			v.addWarning(fmt.Sprintf("task %q has no activity marker named %q", t.Title, name))
		}
	}
	return nil
}

func (v *BundleValidator) validateTagFormat(fieldName, tag string) {
	if tag == "" {
		return
	}
	if !isValidTag(tag) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, tag))
	}
}

func (v *BundleValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *BundleValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - "+msg)
}

var validTagRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidTag(tag string) bool {
	return validTagRegex.MatchString(tag)
}
