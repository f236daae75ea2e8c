package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillforge/docpdf/internal/logging"
	"github.com/quillforge/docpdf/pkg/docpdf"
)

// CORSMiddleware mirrors the teacher's permissive-but-explicit CORS
// handling: wide-open headers/methods, origin left to the caller to
// restrict via a reverse proxy.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RegisterRoutes wires the docpdf compile endpoint onto router, the way
// handlers.RegisterRoutes wires the teacher's generation endpoints.
func RegisterRoutes(router *gin.Engine, log *logging.Logger) {
	v1 := router.Group("/v1")
	v1.Use(CORSMiddleware())
	{
		v1.OPTIONS("/*path", func(c *gin.Context) {})
		v1.POST("/compile", handleCompile(log))
	}
}

// handleCompile decodes a CompileRequest, runs it through pkg/docpdf.Compile
// against in-memory collaborators, and streams the resulting PDF back.
func handleCompile(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		reader, parser, err := newMemoryCollaborators(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := docpdf.Compile(reader, parser, docpdf.Options{
			ArlingtonCompatible: req.ArlingtonCompatible,
			WatermarkOpacity:    req.WatermarkOpacity,
			Info:                req.Info.toDocumentInfo(),
			Logger:              log,
			Validate:            req.Validate,
		})
		if err != nil {
			log.Error("compile failed", "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		if req.Validate && !result.Summary.IsValid {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "layout validation failed",
				"summary": result.Summary,
			})
			return
		}

		c.Data(http.StatusOK, "application/pdf", result.PDF)
	}
}
