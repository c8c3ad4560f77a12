package grpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request keys.
const (
	keyEntityType = "entityType"
	keyID         = "id"
	keyFields     = "fields"
)

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func entityType(req *structpb.Struct) (models.EntityType, error) {
	kind := models.EntityType(stringField(req, keyEntityType))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: entity type %q", errInvalidRequest, kind)
	}
	return kind, nil
}

func requiredID(req *structpb.Struct) (string, error) {
	id := stringField(req, keyID)
	if id == "" {
		return "", fmt.Errorf("%w: missing id", errInvalidRequest)
	}
	return id, nil
}

// fieldsJSON returns the "fields" object of req as JSON.
func fieldsJSON(req *structpb.Struct) ([]byte, error) {
	fields := req.GetFields()[keyFields].GetStructValue()
	if fields == nil {
		return nil, fmt.Errorf("%w: missing fields", errInvalidRequest)
	}
	b, err := json.Marshal(fields.AsMap())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return b, nil
}

// decodeStrict unmarshals body into v rejecting unknown keys.
func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// toStruct converts any JSON-encodable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func wrap(key string, v any) (*structpb.Struct, error) {
	return toStruct(map[string]any{key: v})
}
