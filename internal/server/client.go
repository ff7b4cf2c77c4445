package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is a typed caller for the b2breeze services.
type Client struct {
	cc grpc.ClientConnInterface
}

// Dial connects to addr without TLS; the daemon serves plaintext on a
// trusted network.
func Dial(addr string, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewClient(conn), conn, nil
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, req, out, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateContact(ctx context.Context, req *CreateContactRequest) (*ContactResponse, error) {
	return invoke[ContactResponse](ctx, c.cc, "/"+ContactsServiceName+"/CreateContact", req)
}

func (c *Client) GetContact(ctx context.Context, req *GetContactRequest) (*ContactResponse, error) {
	return invoke[ContactResponse](ctx, c.cc, "/"+ContactsServiceName+"/GetContact", req)
}

func (c *Client) ListContacts(ctx context.Context, req *ListContactsRequest) (*ListContactsResponse, error) {
	return invoke[ListContactsResponse](ctx, c.cc, "/"+ContactsServiceName+"/ListContacts", req)
}

func (c *Client) UpdateContact(ctx context.Context, req *UpdateContactRequest) (*ContactResponse, error) {
	return invoke[ContactResponse](ctx, c.cc, "/"+ContactsServiceName+"/UpdateContact", req)
}

func (c *Client) DeleteContact(ctx context.Context, req *DeleteContactRequest) (*DeleteContactResponse, error) {
	return invoke[DeleteContactResponse](ctx, c.cc, "/"+ContactsServiceName+"/DeleteContact", req)
}

func (c *Client) ShareContact(ctx context.Context, req *ShareContactRequest) (*ShareContactResponse, error) {
	return invoke[ShareContactResponse](ctx, c.cc, "/"+ContactsServiceName+"/ShareContact", req)
}

func (c *Client) ScanCard(ctx context.Context, req *ScanCardRequest) (*ScanCardResponse, error) {
	return invoke[ScanCardResponse](ctx, c.cc, "/"+ScanServiceName+"/ScanCard", req)
}

func (c *Client) ParseText(ctx context.Context, req *ParseTextRequest) (*ParseTextResponse, error) {
	return invoke[ParseTextResponse](ctx, c.cc, "/"+ScanServiceName+"/ParseText", req)
}

func (c *Client) GetScanJob(ctx context.Context, req *GetScanJobRequest) (*GetScanJobResponse, error) {
	return invoke[GetScanJobResponse](ctx, c.cc, "/"+ScanServiceName+"/GetScanJob", req)
}

func (c *Client) ExportContacts(ctx context.Context, req *ExportContactsRequest) (*ExportContactsResponse, error) {
	return invoke[ExportContactsResponse](ctx, c.cc, "/"+ExportServiceName+"/ExportContacts", req)
}
