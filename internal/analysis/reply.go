package analysis

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed reply_schema.json
var replySchemaJSON []byte

var (
	replySchemaOnce sync.Once
	replySchema     *jsonschema.Schema
	replySchemaErr  error
)

// Reply is either a StructuredReply or a FreeTextReply.
type Reply interface {
	isReply()
}

// StructuredReply is a model reply that matched the {result, detail} shape.
type StructuredReply struct {
	Result Result
}

// FreeTextReply is any other reply, kept verbatim.
type FreeTextReply struct {
	Raw string
}

func (StructuredReply) isReply() {}
func (FreeTextReply) isReply()   {}

// ParseReply classifies raw into one of the two reply variants.
func ParseReply(raw string) Reply {
	if res, ok := parseStructured(raw); ok {
		return StructuredReply{Result: res}
	}
	return FreeTextReply{Raw: raw}
}

// Resolve turns any reply into a Result, applying Classify to free text.
func Resolve(reply Reply) Result {
	switch r := reply.(type) {
	case StructuredReply:
		return r.Result
	case FreeTextReply:
		return Classify(r)
	default:
		panic(fmt.Sprintf("analysis: unknown reply type %T", reply))
	}
}

// Classify labels a free-text reply: Conforme only when the lower-cased text
// mentions "conforme" and never "non". The detail is the raw reply.
func Classify(reply FreeTextReply) Result {
	lowered := strings.ToLower(reply.Raw)
	label := LabelNonConforme
	if strings.Contains(lowered, "conforme") && !strings.Contains(lowered, "non") {
		label = LabelConforme
	}
	return NewResult(label, reply.Raw)
}

func parseStructured(raw string) (Result, bool) {
	schema, err := compiledReplySchema()
	if err != nil {
		return Result{}, false
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Result{}, false
	}
	// Only JSON whitespace may follow the document.
	if strings.TrimLeft(raw[dec.InputOffset():], " \t\r\n") != "" {
		return Result{}, false
	}
	if err := schema.Validate(doc); err != nil {
		return Result{}, false
	}

	obj := doc.(map[string]any)
	var res Result
	if v, ok := obj["result"].(string); ok {
		res.Label = &v
	}
	if v, ok := obj["detail"].(string); ok {
		res.Detail = &v
	}
	return res, true
}

func compiledReplySchema() (*jsonschema.Schema, error) {
	replySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("reply.json", bytes.NewReader(replySchemaJSON)); err != nil {
			replySchemaErr = fmt.Errorf("add reply schema: %w", err)
			return
		}
		replySchema, replySchemaErr = compiler.Compile("reply.json")
	})
	return replySchema, replySchemaErr
}
