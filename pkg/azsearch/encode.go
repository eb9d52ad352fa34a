package azsearch

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// batchEncoder renders a batch of operations as the service's bulk-index
// JSON body. It owns the array-field rule (compiled once) and applies the
// validation tolerance policy from the configuration.
type batchEncoder struct {
	cfg Config
	log *slog.Logger

	// Exactly one of arrayRE/arraySet is populated when an array-field
	// rule is configured.
	arrayRE  *regexp.Regexp
	arraySet map[string]struct{}
}

func newBatchEncoder(cfg Config, log *slog.Logger) (*batchEncoder, error) {
	e := &batchEncoder{cfg: cfg, log: log}
	rule := strings.TrimSpace(cfg.ArrayFields)
	if rule == "" {
		return e, nil
	}
	if cfg.ArrayFieldsRegex {
		// Whole-name match, same semantics as the CSV set.
		re, err := regexp.Compile("^(?:" + rule + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w: invalid array fields pattern %q: %v", ErrConfig, rule, err)
		}
		e.arrayRE = re
		return e, nil
	}
	e.arraySet = make(map[string]struct{})
	for _, name := range strings.Split(rule, ",") {
		if name = strings.TrimSpace(name); name != "" {
			e.arraySet[name] = struct{}{}
		}
	}
	return e, nil
}

// forceArray reports whether field must serialize as a JSON array even
// with a single value.
func (e *batchEncoder) forceArray(field string) bool {
	if e.arrayRE != nil {
		return e.arrayRE.MatchString(field)
	}
	_, ok := e.arraySet[field]
	return ok
}

// encode renders the request body for batch and returns it together with
// the number of documents it contains. Operations dropped by validation
// are omitted entirely; zero documents means nothing to commit and no
// request should be sent.
func (e *batchEncoder) encode(batch Batch) ([]byte, int, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"value":[`)
	docs := 0
	for _, op := range batch {
		var doc []byte
		switch op := op.(type) {
		case AddOperation:
			var err error
			if doc, err = e.encodeAdd(op); err != nil {
				return nil, 0, err
			}
		case DeleteOperation:
			doc = e.encodeDelete(op)
		default:
			return nil, 0, fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
		}
		if doc == nil {
			continue
		}
		if docs > 0 {
			buf.WriteByte(',')
		}
		buf.Write(doc)
		docs++
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), docs, nil
}

// encodeAdd renders one upload document. A nil, nil return means the
// operation was dropped by key validation under tolerance.
func (e *batchEncoder) encodeAdd(op AddOperation) ([]byte, error) {
	keyField := e.cfg.keyField()
	key := strings.TrimSpace(op.Fields.First(keyField))
	if key == "" {
		key = op.Ref
	}

	if e.cfg.DisableKeyEncoding {
		if err := ValidateDocumentKey(key); err != nil {
			if !e.cfg.IgnoreValidationErrors {
				return nil, err
			}
			e.log.Error("dropping document with invalid key",
				slog.String("key", key), slog.Any("error", err))
			return nil, nil
		}
	} else {
		key = base64.RawURLEncoding.EncodeToString([]byte(key))
	}

	var buf bytes.Buffer
	buf.WriteString(`{"@search.action":"upload",`)
	writeJSONString(&buf, keyField)
	buf.WriteByte(':')
	writeJSONString(&buf, key)
	for _, f := range op.Fields {
		// The key field was already emitted first.
		if f.Name == keyField {
			continue
		}
		if err := ValidateFieldName(f.Name); err != nil {
			if !e.cfg.IgnoreValidationErrors {
				return nil, err
			}
			e.log.Error("skipping field with invalid name",
				slog.String("field", f.Name), slog.Any("error", err))
			continue
		}
		buf.WriteByte(',')
		e.writeField(&buf, f)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeDelete renders one delete document. Delete keys are always
// base64-encoded, regardless of the key-encoding setting.
func (e *batchEncoder) encodeDelete(op DeleteOperation) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"@search.action":"delete",`)
	writeJSONString(&buf, e.cfg.keyField())
	buf.WriteByte(':')
	writeJSONString(&buf, base64.RawURLEncoding.EncodeToString([]byte(op.Ref)))
	buf.WriteByte('}')
	return buf.Bytes()
}

func (e *batchEncoder) writeField(buf *bytes.Buffer, f Field) {
	writeJSONString(buf, f.Name)
	buf.WriteByte(':')
	if len(f.Values) == 1 && !e.forceArray(f.Name) {
		writeJSONString(buf, f.Values[0])
		return
	}
	buf.WriteByte('[')
	for i, v := range f.Values {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(buf, v)
	}
	buf.WriteByte(']')
}

// writeJSONString appends s as a JSON string literal, escaping quotes,
// backslashes and control characters.
func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
