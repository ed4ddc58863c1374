package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa030/19player/internal/app/source"
	"github.com/osa030/19player/internal/domain/song"
	catalogclient "github.com/osa030/19player/internal/infra/catalog"
)

// catalogErrorUnknownKind is the error code returned for unknown kinds.
const catalogErrorUnknownKind = 6

// MockCatalog handles GET /mock/catalog/:kind
// It serves the demo catalog of a remote kind in the format the catalog
// client reads, so remote sources can be pointed at this server.
func MockCatalog(c *gin.Context) {
	kind := song.Kind(c.Param("kind"))
	if !kind.Valid() || kind == song.KindLocal {
		c.JSON(http.StatusNotFound, catalogclient.APIError{
			Error:   catalogErrorUnknownKind,
			Message: "unknown catalog kind: " + kind.String(),
		})
		return
	}
	c.JSON(http.StatusOK, catalogclient.FromCatalog(source.DemoCatalog(kind)))
}
