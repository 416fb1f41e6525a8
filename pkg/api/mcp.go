package api

import (
	"context"

	"github.com/hazyhaar/lexicheck/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the lexicheck tools on srv. They dispatch to the
// same endpoints as the HTTP routes.
func RegisterMCPTools(srv *server.MCPServer, d Deps) {
	ep := newEndpoints(d.withDefaults())
	registerValidateAnswer(srv, ep)
	registerLocalMatch(srv, ep)
	registerNormalize(srv, ep)
	registerListLanguages(srv, ep)
}

// answerArgs are the tool arguments shared by validate_answer and local_match.
func answerArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("user_answer", mcp.Required(), mcp.Description("What the learner typed")),
		mcp.WithString("correct_answer", mcp.Required(), mcp.Description("Expected answer; alternatives separated by '/'")),
		mcp.WithString("direction", mcp.Enum("target_to_native", "native_to_target"), mcp.Description("Translation direction")),
		mcp.WithString("target_language", mcp.Description("ISO 639-1 code of the language being learned (e.g. pl)")),
		mcp.WithString("native_language", mcp.Description("ISO 639-1 code of the learner's language (e.g. en)")),
	}
}

func decodeAnswer(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	user, err := req.RequireString("user_answer")
	if err != nil {
		return nil, err
	}
	correct, err := req.RequireString("correct_answer")
	if err != nil {
		return nil, err
	}
	r := &answerReq{
		UserAnswer:     user,
		CorrectAnswer:  correct,
		TargetWord:     req.GetString("target_word", ""),
		WordType:       req.GetString("word_type", ""),
		Direction:      req.GetString("direction", ""),
		TargetLanguage: req.GetString("target_language", ""),
		NativeLanguage: req.GetString("native_language", ""),
	}
	res := &kit.MCPDecodeResult{Request: r}
	if caller := req.Header.Get(kit.HeaderUserID); caller != "" {
		res.EnrichCtx = func(ctx context.Context) context.Context {
			return kit.WithUserID(ctx, caller)
		}
	}
	return res, nil
}

func registerValidateAnswer(srv *server.MCPServer, ep *endpoints) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Decide whether a learner's vocabulary answer should be accepted. Local checks are free; unresolved answers go to the semantic judge and count against the caller's monthly quota."),
		mcp.WithString("target_word", mcp.Description("The word being translated, for context")),
		mcp.WithString("word_type", mcp.Description("noun, verb, phrase, ...")),
	}, answerArgs()...)
	kit.RegisterMCPTool(srv, mcp.NewTool("validate_answer", opts...), ep.validateAnswer, decodeAnswer)
}

func registerLocalMatch(srv *server.MCPServer, ep *endpoints) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Run only the local matcher and report which stage accepted the answer, if any."),
	}, answerArgs()...)
	kit.RegisterMCPTool(srv, mcp.NewTool("local_match", opts...), ep.localMatch, decodeAnswer)
}

func registerNormalize(srv *server.MCPServer, ep *endpoints) {
	tool := mcp.NewTool("normalize_answer",
		mcp.WithDescription("Show the comparison form of an answer and of each of its '/'-separated alternatives."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The answer to normalize")),
	)
	kit.RegisterMCPTool(srv, tool, ep.normalize, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &normalizeReq{Text: text}}, nil
	})
}

func registerListLanguages(srv *server.MCPServer, ep *endpoints) {
	tool := mcp.NewTool("list_languages",
		mcp.WithDescription("List supported languages and whether article and verb-prefix stripping applies to each."),
	)
	kit.RegisterMCPTool(srv, tool, ep.listLanguages, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}
