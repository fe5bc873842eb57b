package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"lorelink/internal/config"
	"lorelink/internal/store"
	"lorelink/internal/turn"
	"lorelink/internal/worldinfo"
)

type Server struct {
	cfg      *config.ProjectConfig
	db       store.Store
	lorebook []worldinfo.Entry
	svc      turn.CompletionService
	mcp      *sdk.Server
}

func NewServer(cfg *config.ProjectConfig, db store.Store, lorebook []worldinfo.Entry, svc turn.CompletionService, version string) *Server {
	s := &Server{
		cfg:      cfg,
		db:       db,
		lorebook: lorebook,
		svc:      svc,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "lorelink",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
