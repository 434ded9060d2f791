package main

import (
	"mycenter/adapters/grpchealth"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// newHealthServer builds the gRPC server exposing reporter's health service, with reflection for grpcurl.
//
// Called from main when HEALTH_PORT_GRPC is set.
func newHealthServer(reporter *grpchealth.Reporter) *grpc.Server {
	grpcServer := grpc.NewServer()
	reporter.Register(grpcServer)
	reflection.Register(grpcServer)
	return grpcServer
}
