package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the recent messages of a channel the signed-in user
// belongs to.
func HistoryHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		channelID := c.Param("id")

		ok, err := svc.IsMember(c.Request.Context(), channelID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify channel membership"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this channel"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		msgs, err := svc.History(c.Request.Context(), channelID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
			return
		}

		c.JSON(http.StatusOK, msgs)
	}
}
