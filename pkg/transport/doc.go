/*
Package transport implements the transport collaborator: an async RPC
client per peer exposing SendHeartbeat and StartElection. GRPCTransport
carries these over real gRPC connections using a hand-authored service
descriptor (pkg/transport/transportpb) and a JSON wire codec in place of
generated protobuf marshalling. Fake dispatches in-memory for
deterministic tests.
*/
package transport
