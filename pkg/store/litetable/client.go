package litetable

import (
	"context"

	"github.com/litetable/litetable-db/pkg/proto"
	"google.golang.org/grpc"
)

//go:generate mockgen -destination=client_mock.go -package=litetable -source=client.go

// serviceClient is the part of proto.LitetableServiceClient the store uses.
type serviceClient interface {
	Write(ctx context.Context, in *proto.WriteRequest, opts ...grpc.CallOption) (*proto.LitetableData, error)
	Read(ctx context.Context, in *proto.ReadRequest, opts ...grpc.CallOption) (*proto.LitetableData, error)
	Delete(ctx context.Context, in *proto.DeleteRequest, opts ...grpc.CallOption) (*proto.Empty, error)
	CreateFamily(ctx context.Context, in *proto.CreateFamilyRequest, opts ...grpc.CallOption) (*proto.Empty, error)
}
