package transport

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is the gRPC content-subtype this codec registers under.
const jsonCodecName = "json"

// jsonCodec implements encoding.Codec by marshalling messages as JSON
// instead of protobuf binary. Registering it lets grpc.Server/ClientConn
// carry the plain structs in pkg/types as RPC payloads with no .pb.go
// generation step.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
