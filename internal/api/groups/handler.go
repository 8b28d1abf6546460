package groups

import (
	"net/http"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/chat"
	groupmodel "lingua-app/internal/domain/groups"
	"lingua-app/internal/enrollment"
	"lingua-app/internal/storage"

	"github.com/gin-gonic/gin"
)

var (
	coordinator *enrollment.Coordinator
	channels    *chat.Service
	groupStore  *storage.GroupStore
)

// Init wires the package handlers at startup.
func Init(co *enrollment.Coordinator, ch *chat.Service, gs *storage.GroupStore) {
	coordinator = co
	channels = ch
	groupStore = gs
}

func ListGroups(c *gin.Context) {
	q := database.DB.Model(&groupmodel.Group{})

	if lang := c.Query("language"); lang != "" {
		q = q.Where("language = ?", lang)
	}
	if premium := c.Query("premium"); premium != "" {
		q = q.Where("is_premium = ?", premium == "true")
	}

	var list []groupmodel.Group
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load groups"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func GetGroup(c *gin.Context) {
	var group groupmodel.Group
	if err := database.DB.First(&group, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	c.JSON(http.StatusOK, group)
}

func CreateGroup(c *gin.Context) {
	role := c.GetString("role")
	if role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var body struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Language    string `json:"language" binding:"required"`
		IsPremium   bool   `json:"is_premium"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := groupmodel.Group{
		Name:        body.Name,
		Description: body.Description,
		Language:    body.Language,
		IsPremium:   body.IsPremium,
	}

	if channels != nil {
		channelID, err := channels.CreateChannel(c.Request.Context(), "group", body.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group channel"})
			return
		}
		group.ChannelID = &channelID
	}

	if err := database.DB.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, group)
}

// LinkClass attaches an existing class to a group (admin curation).
func LinkClass(c *gin.Context) {
	role := c.GetString("role")
	if role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var body struct {
		ClassID string `json:"class_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if groupStore == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Groups unavailable"})
		return
	}
	if err := groupStore.LinkClass(c.Request.Context(), c.Param("id"), body.ClassID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link class"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Class linked to group"})
}

// JoinGroup runs the membership protocol for the signed-in user.
func JoinGroup(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if coordinator == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Joining unavailable"})
		return
	}

	res, err := coordinator.JoinGroup(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		httputil.WriteEnrollmentError(c, err)
		return
	}

	resp := gin.H{
		"message": "Joined group",
		"result":  res,
	}
	if res.ChatJoinFailed {
		resp["warning"] = "Joined, but connecting to the group chat failed. You can retry from the group page."
	}
	c.JSON(http.StatusOK, resp)
}
