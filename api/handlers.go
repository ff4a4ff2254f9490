package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drawroom/drawroom-server/http_utils"
)

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, http_utils.NewBaseResponse(true, "ok"))
}

// PublicRooms is the REST twin of the getPublicRooms socket message, for
// lobby browsers that want the listing before opening a connection.
func (s *Server) PublicRooms(c *gin.Context) {
	c.JSON(http.StatusOK, http_utils.DataResponse{
		BaseResponse: http_utils.NewBaseResponse(true, "public rooms"),
		Data:         s.directory.ListPublic(),
	})
}
