package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/graphml"
)

// GraphMLHandler validates uploaded GraphML documents.
type GraphMLHandler struct {
	log *logrus.Logger
}

// NewGraphMLHandler creates a GraphMLHandler.
func NewGraphMLHandler(log *logrus.Logger) *GraphMLHandler {
	return &GraphMLHandler{log: log}
}

// ValidateResponse describes a document that decoded cleanly.
type ValidateResponse struct {
	GraphID   string `json:"graph_id"`
	Directed  bool   `json:"directed"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	MaxDegree int    `json:"max_degree"`
}

// Validate handles POST /api/v1/graphml/validate. The body is the document.
func (h *GraphMLHandler) Validate(c *gin.Context) {
	src, err := io.ReadAll(io.LimitReader(c.Request.Body, graphml.MaxDocumentSize+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "reading request body failed")
		return
	}

	g, err := graphml.Decode(src)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		GraphID:   g.ID,
		Directed:  g.Directed,
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		MaxDegree: g.MaxDegree(),
	})
}
