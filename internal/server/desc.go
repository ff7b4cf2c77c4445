package server

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ContactsServiceName = "b2breeze.v1.ContactsService"
	ScanServiceName     = "b2breeze.v1.ScanService"
	ExportServiceName   = "b2breeze.v1.ExportService"
)

// unary builds a MethodDesc in the shape protoc-gen-go-grpc emits, decoding
// into Req and dispatching to call on the registered implementation.
func unary[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type ContactsServer interface {
	CreateContact(context.Context, *CreateContactRequest) (*ContactResponse, error)
	GetContact(context.Context, *GetContactRequest) (*ContactResponse, error)
	ListContacts(context.Context, *ListContactsRequest) (*ListContactsResponse, error)
	UpdateContact(context.Context, *UpdateContactRequest) (*ContactResponse, error)
	DeleteContact(context.Context, *DeleteContactRequest) (*DeleteContactResponse, error)
	ShareContact(context.Context, *ShareContactRequest) (*ShareContactResponse, error)
}

var ContactsServiceDesc = grpc.ServiceDesc{
	ServiceName: ContactsServiceName,
	HandlerType: (*ContactsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ContactsServiceName, "CreateContact", ContactsServer.CreateContact),
		unary(ContactsServiceName, "GetContact", ContactsServer.GetContact),
		unary(ContactsServiceName, "ListContacts", ContactsServer.ListContacts),
		unary(ContactsServiceName, "UpdateContact", ContactsServer.UpdateContact),
		unary(ContactsServiceName, "DeleteContact", ContactsServer.DeleteContact),
		unary(ContactsServiceName, "ShareContact", ContactsServer.ShareContact),
	},
	Metadata: "b2breeze/v1/contacts.json",
}

type ScanServer interface {
	ScanCard(context.Context, *ScanCardRequest) (*ScanCardResponse, error)
	ParseText(context.Context, *ParseTextRequest) (*ParseTextResponse, error)
	GetScanJob(context.Context, *GetScanJobRequest) (*GetScanJobResponse, error)
}

var ScanServiceDesc = grpc.ServiceDesc{
	ServiceName: ScanServiceName,
	HandlerType: (*ScanServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ScanServiceName, "ScanCard", ScanServer.ScanCard),
		unary(ScanServiceName, "ParseText", ScanServer.ParseText),
		unary(ScanServiceName, "GetScanJob", ScanServer.GetScanJob),
	},
	Metadata: "b2breeze/v1/scan.json",
}

type ExportServer interface {
	ExportContacts(context.Context, *ExportContactsRequest) (*ExportContactsResponse, error)
}

var ExportServiceDesc = grpc.ServiceDesc{
	ServiceName: ExportServiceName,
	HandlerType: (*ExportServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ExportServiceName, "ExportContacts", ExportServer.ExportContacts),
	},
	Metadata: "b2breeze/v1/export.json",
}

func RegisterContactsServer(s grpc.ServiceRegistrar, srv ContactsServer) {
	s.RegisterService(&ContactsServiceDesc, srv)
}

func RegisterScanServer(s grpc.ServiceRegistrar, srv ScanServer) {
	s.RegisterService(&ScanServiceDesc, srv)
}

func RegisterExportServer(s grpc.ServiceRegistrar, srv ExportServer) {
	s.RegisterService(&ExportServiceDesc, srv)
}
