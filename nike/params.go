package nike

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// Param is a single request parameter.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered set of request parameters. Order is kept both in query
// strings and in JSON bodies.
type Params []Param

// Set replaces the value of key, or appends it when absent.
func (p Params) Set(key string, value any) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Param{Key: key, Value: value})
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// Encode renders the parameters as a URL query string in insertion order.
func (p Params) Encode() string {
	var buf bytes.Buffer
	for i, param := range p {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(param.Key))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(fmt.Sprint(param.Value)))
	}
	return buf.String()
}

// MarshalJSON renders the parameters as a JSON object in insertion order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(param.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parameter %q: %w", param.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
