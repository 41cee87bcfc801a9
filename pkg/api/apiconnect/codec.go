// Package apiconnect wires the api messages to Connect handlers and clients.
//
// The services speak the Connect protocol with a JSON codec over plain Go
// structs, so any HTTP client can call them:
//
//	curl -H 'Content-Type: application/json' \
//	  -d '{"groupId":"...","viewerId":"..."}' \
//	  http://localhost:8080/splitledger.v1.GroupService/GetGroupView
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec marshals plain structs with encoding/json.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}
