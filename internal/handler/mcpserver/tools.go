package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/usecase"
)

const (
	serverName    = "dns-manager"
	serverVersion = "1.0.0"
)

// Tools exposes the DNS use cases as MCP tools.
// Records created without an explicit user are owned by owner.
type Tools struct {
	dns   usecase.DNSUsecase
	owner string
	lg    *zap.Logger
}

// NewTools creates the MCP tool set
func NewTools(dnsUsecase usecase.DNSUsecase, owner string, lg *zap.Logger) *Tools {
	return &Tools{
		dns:   dnsUsecase,
		owner: owner,
		lg:    lg.Named("mcp"),
	}
}

// NewServer creates an MCP server with every tool registered
func NewServer(tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
		server.WithToolCapabilities(true),
	)
	tools.Register(s)
	return s
}

// Register adds every tool to s
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_zones",
		"List all hosted zones at the DNS provider",
		objectSchema(nil, nil),
	), t.withContext(t.listZones))

	s.AddTool(mcp.NewTool("list_records",
		"List DNS records. Filter by user, or by any record field and value. Without arguments every record is returned.",
		objectSchema(map[string]any{
			"user":  stringProp("Only records owned by this user id"),
			"field": stringProp("Record field to match: domain, type, value, ttl, owner"),
			"value": stringProp("Value the field must equal"),
		}, nil),
	), t.withContext(t.listRecords))

	s.AddTool(mcp.NewTool("get_record",
		"Get a DNS record by id",
		objectSchema(map[string]any{
			"id": stringProp("The record id"),
		}, []string{"id"}),
	), t.withContext(t.getRecord))

	s.AddTool(mcp.NewTool("create_record",
		"Create a DNS record at the provider and store it. The hosted zone is created when missing.",
		objectSchema(recordProps(), []string{"domain", "type", "value"}),
	), t.withContext(t.createRecord))

	updateProps := recordProps()
	updateProps["record_id"] = stringProp("Id of the stored record being edited")
	s.AddTool(mcp.NewTool("update_record",
		"Update a DNS record at the provider and in the store",
		objectSchema(updateProps, []string{"domain", "type", "value"}),
	), t.withContext(t.updateRecord))

	s.AddTool(mcp.NewTool("delete_record",
		"Delete a DNS record by id. An apex record cannot be deleted while subdomains exist.",
		objectSchema(map[string]any{
			"id": stringProp("The record id"),
		}, []string{"id"}),
	), t.withContext(t.deleteRecord))

	s.AddTool(mcp.NewTool("record_distribution",
		"Count records grouped by a field: domain, type, value, ttl, owner",
		objectSchema(map[string]any{
			"field": stringProp("Field to group by"),
		}, []string{"field"}),
	), t.withContext(t.recordDistribution))
}

type toolFunc func(ctx context.Context, arguments map[string]interface{}) (any, error)

// withContext adapts a toolFunc to the mcp-go handler signature and renders
// its result as indented JSON
func (t *Tools) withContext(fn toolFunc) func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	return func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		result, err := fn(context.Background(), arguments)
		if err != nil {
			t.lg.Warn("[Tool] ERROR", zap.Error(err))
			return errorResult(err), nil
		}
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errorResult(err), nil
		}
		return &mcp.CallToolResult{
			Content: []interface{}{mcp.NewTextContent(string(jsonData))},
		}, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []interface{}{mcp.NewTextContent(fmt.Sprintf("Error: %v", err))},
	}
}

func (t *Tools) listZones(ctx context.Context, _ map[string]interface{}) (any, error) {
	return t.dns.ListZones(ctx)
}

func (t *Tools) listRecords(ctx context.Context, arguments map[string]interface{}) (any, error) {
	return t.dns.ListRecords(ctx, usecase.ListRecordsInput{
		Owner: stringArg(arguments, "user"),
		Field: stringArg(arguments, "field"),
		Value: stringArg(arguments, "value"),
	})
}

func (t *Tools) getRecord(ctx context.Context, arguments map[string]interface{}) (any, error) {
	id, err := requiredArg(arguments, "id")
	if err != nil {
		return nil, err
	}
	record, err := t.dns.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrRecordNotFound
	}
	return record, nil
}

func (t *Tools) createRecord(ctx context.Context, arguments map[string]interface{}) (any, error) {
	return t.dns.CreateRecord(ctx, t.recordInput(arguments))
}

func (t *Tools) updateRecord(ctx context.Context, arguments map[string]interface{}) (any, error) {
	return t.dns.UpdateRecord(ctx, usecase.UpdateRecordInput{
		DNSRecordInput: t.recordInput(arguments),
		RecordID:       stringArg(arguments, "record_id"),
	})
}

func (t *Tools) deleteRecord(ctx context.Context, arguments map[string]interface{}) (any, error) {
	id, err := requiredArg(arguments, "id")
	if err != nil {
		return nil, err
	}
	return t.dns.DeleteRecord(ctx, id)
}

func (t *Tools) recordDistribution(ctx context.Context, arguments map[string]interface{}) (any, error) {
	return t.dns.Distribution(ctx, stringArg(arguments, "field"))
}

func (t *Tools) recordInput(arguments map[string]interface{}) domain.DNSRecordInput {
	input := domain.DNSRecordInput{
		Domain: stringArg(arguments, "domain"),
		Type:   stringArg(arguments, "type"),
		Value:  stringArg(arguments, "value"),
		Owner:  lo.CoalesceOrEmpty(stringArg(arguments, "user"), t.owner),
	}
	// JSON numbers arrive as float64
	if v, ok := arguments["ttl"].(float64); ok {
		input.TTL = int(v)
	}
	return input
}

func stringArg(arguments map[string]interface{}, key string) string {
	v, _ := arguments[key].(string)
	return v
}

func requiredArg(arguments map[string]interface{}, key string) (string, error) {
	v := stringArg(arguments, key)
	if v == "" {
		return "", domain.NewError(domain.KindValidation, key+" is required", nil)
	}
	return v, nil
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func recordProps() map[string]any {
	return map[string]any{
		"domain": stringProp("Fully qualified record name, e.g. www.example.com"),
		"type":   stringProp("Record type: A, AAAA, CNAME, MX, NS, PTR, SOA, SRV, TXT"),
		"value":  stringProp("Record value, e.g. an IP for A or a hostname for CNAME"),
		"ttl": map[string]interface{}{
			"type":        "number",
			"description": "TTL in seconds (default 3600)",
		},
		"user": stringProp("Owner user id"),
	}
}

func objectSchema(properties map[string]any, required []string) map[string]interface{} {
	if properties == nil {
		properties = map[string]any{}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
