package bridge

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/shardfetch/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	issueTokenMethod  = "/bridge.v1.Bridge/IssueToken"
	getPointersMethod = "/bridge.v1.Bridge/GetPointers"

	// AuthorizationHeader carries basic credentials on every call.
	AuthorizationHeader = "authorization"
)

// GRPCGateway invokes the bridge over gRPC. Messages are structpb.Struct
// values carrying the same fields as the REST protocol.
type GRPCGateway struct {
	conn     *grpc.ClientConn
	user     string
	password string
	log      logging.Logger
}

// NewGRPCGateway connects to target. Extra dial options are appended after
// the transport credentials chosen from useTLS.
func NewGRPCGateway(target string, useTLS bool, opts Options, dialOpts ...grpc.DialOption) (*GRPCGateway, error) {
	opts.applyDefaults()

	g := &GRPCGateway{
		user:     opts.User,
		password: opts.Password,
		log:      opts.Logger.With("gateway", ProtocolGRPC),
	}

	creds := insecure.NewCredentials()
	if useTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	all := append([]grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithUnaryInterceptor(g.credentialsInterceptor),
	}, dialOpts...)

	conn, err := grpc.NewClient(target, all...)
	if err != nil {
		return nil, err
	}
	g.conn = conn
	return g, nil
}

func withHeader(ctx context.Context, name, value string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(name, value)
	return metadata.NewOutgoingContext(ctx, md)
}

func (g *GRPCGateway) credentialsInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if g.user != "" {
		raw := g.user + ":" + HashPassword(g.password)
		ctx = withHeader(ctx, AuthorizationHeader, "Basic "+base64.StdEncoding.EncodeToString([]byte(raw)))
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (g *GRPCGateway) IssueToken(ctx context.Context, containerID, fileName string) (Token, error) {
	req, err := structpb.NewStruct(map[string]any{
		"bucket":    containerID,
		"file":      DeriveFileID(containerID, fileName),
		"operation": OperationPull,
	})
	if err != nil {
		return Token{}, err
	}

	reply := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, issueTokenMethod, req, reply); err != nil {
		return Token{}, g.mapError(err)
	}

	var wt wireToken
	if err := decodeStruct(reply, &wt); err != nil {
		return Token{}, err
	}
	return wt.toToken(containerID)
}

func (g *GRPCGateway) GetPointers(ctx context.Context, containerID, fileName string, token Token) (PointerList, error) {
	req, err := structpb.NewStruct(map[string]any{
		"bucket": containerID,
		"file":   DeriveFileID(containerID, fileName),
	})
	if err != nil {
		return nil, err
	}

	reply := &structpb.Struct{}
	ctx = withHeader(ctx, TokenHeader, token.Value)
	if err := g.conn.Invoke(ctx, getPointersMethod, req, reply); err != nil {
		return nil, g.mapError(err)
	}

	var out struct {
		Pointers PointerList `json:"pointers"`
	}
	if err := decodeStruct(reply, &out); err != nil {
		return nil, err
	}
	g.log.Debug(ctx, "pointers retrieved", "container_id", containerID, "count", len(out.Pointers))
	return out.Pointers.normalize()
}

func (g *GRPCGateway) Close() error {
	return g.conn.Close()
}

func decodeStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return nil
}

func (g *GRPCGateway) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
