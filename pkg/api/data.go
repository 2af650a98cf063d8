package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
)

type Parameter map[string]string

func (p Parameter) ToReader() (io.Reader, string, error) {
	return bytes.NewBufferString(p.Encode()), "application/x-www-form-urlencoded", nil
}

// Encode returns the parameters sorted by key, with spaces as %20.
func (p Parameter) Encode() string {
	values := url.Values{}
	for key, value := range p {
		values.Set(key, value)
	}

	return strings.ReplaceAll(values.Encode(), "+", "%20")
}

type JSON map[string]any

type Array []JSON

// NewJSON converts a struct to JSON using its structs tags.
func NewJSON(obj any) JSON {
	return JSON(structs.Map(obj))
}

func (j JSON) ToReader() (io.Reader, string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, "", err
	}

	return bytes.NewBuffer(b), "application/json", nil
}

// Decode copies the json object into out, matching fields by their json tag.
func (m JSON) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(map[string]any(m))
}

func bytesToJSON(body []byte) (JSON, error) {
	result := JSON{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return result, nil
}

func bytesToArray(body []byte) (Array, error) {
	result := Array{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return result, nil
}

type Response struct {
	Code    int
	Header  http.Header
	Body    any
	RawBody []byte
}

// JSON returns the body as a json object, or an error if the body is another
// type.
func (r *Response) JSON() (JSON, error) {
	if j, ok := r.Body.(JSON); ok {
		return j, nil
	}

	return nil, fmt.Errorf("invalid type of body (%T)", r.Body)
}
