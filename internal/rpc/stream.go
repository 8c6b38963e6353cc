package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// serviceMethod is the gRPC method the upstream sensor exposes for the
// single bidirectional channel named in spec.md §6. There is no .proto file
// behind this project (see codec.go) so the method is addressed by its
// full name the way a generic/reflection-based gRPC client would.
const serviceMethod = "/netconnd.sensor.v1.CollectorService/Communicate"

var streamDesc = grpc.StreamDesc{
	StreamName:    "Communicate",
	ServerStreams: true,
	ClientStreams: true,
}

// ControlStream is the duplex channel RuntimeControlClient drives. It is
// deliberately narrow (Send/Recv/CloseSend) so tests can substitute an
// in-memory fake instead of dialing a real sensor.
type ControlStream interface {
	Send(Envelope) error
	Recv() (Envelope, error)
	CloseSend() error
}

type grpcStream struct {
	cs grpc.ClientStream
}

func (s *grpcStream) Send(e Envelope) error {
	return s.cs.SendMsg(&e)
}

func (s *grpcStream) Recv() (Envelope, error) {
	var e Envelope
	if err := s.cs.RecvMsg(&e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func (s *grpcStream) CloseSend() error {
	return s.cs.CloseSend()
}

// Dialer opens a ControlStream against the upstream sensor. It exists so
// RuntimeControlClient's Dialing state doesn't have to know about
// grpc.ClientConn directly.
type Dialer interface {
	Dial(ctx context.Context) (ControlStream, error)
	Close() error
}

type grpcDialer struct {
	target string
	conn   *grpc.ClientConn
}

// NewGRPCDialer builds a Dialer against target using insecure transport
// credentials — TLS/mTLS material for the real sensor channel is a
// deployment concern outside this package's scope, matching spec.md §1's
// treatment of the wire codec as out of core scope.
func NewGRPCDialer(target string) (Dialer, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &grpcDialer{target: target, conn: conn}, nil
}

func (d *grpcDialer) Dial(ctx context.Context) (ControlStream, error) {
	cs, err := d.conn.NewStream(ctx, &streamDesc, serviceMethod)
	if err != nil {
		return nil, fmt.Errorf("open stream to %s: %w", d.target, err)
	}
	return &grpcStream{cs: cs}, nil
}

func (d *grpcDialer) Close() error {
	return d.conn.Close()
}
