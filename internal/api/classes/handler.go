package classes

import (
	"net/http"
	"time"

	"lingua-app/database"
	"lingua-app/internal/api/httputil"
	"lingua-app/internal/chat"
	"lingua-app/internal/domain/access"
	classmodel "lingua-app/internal/domain/classes"
	"lingua-app/internal/domain/schedule"
	"lingua-app/internal/enrollment"

	"github.com/gin-gonic/gin"
)

var (
	coordinator *enrollment.Coordinator
	channels    *chat.Service
)

// Init wires the package handlers at startup.
func Init(co *enrollment.Coordinator, ch *chat.Service) {
	coordinator = co
	channels = ch
}

func ListClasses(c *gin.Context) {
	q := database.DB.Model(&classmodel.Class{})

	if lang := c.Query("language"); lang != "" {
		q = q.Where("language = ?", lang)
	}
	if level := c.Query("level"); level != "" {
		q = q.Where("level = ?", level)
	}
	if tier := c.Query("tier"); tier != "" {
		if !access.ClassTier(tier).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tier"})
			return
		}
		q = q.Where("tier = ?", tier)
	}

	var list []classmodel.Class
	if err := q.Order("class_date_time ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load classes"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func GetClass(c *gin.Context) {
	var class classmodel.Class
	if err := database.DB.First(&class, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	c.JSON(http.StatusOK, class)
}

// PreviewSlots computes the upcoming occurrences without booking anything.
func PreviewSlots(c *gin.Context) {
	var class classmodel.Class
	if err := database.DB.First(&class, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	rec, ok := schedule.ParseRecurrence(class.RecurrenceType)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Class has an unknown recurrence type"})
		return
	}

	slots, err := schedule.ComputeSlots(class.ClassDateTime, rec, class.OccurrenceCount, time.Now())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not compute the class schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"class_id":   class.ID,
		"recurrence": class.RecurrenceType,
		"slots":      slots,
	})
}

func CreateClass(c *gin.Context) {
	role := c.GetString("role")
	if role != "admin" && role != "tutor" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var body struct {
		Title           string    `json:"title" binding:"required"`
		Description     string    `json:"description"`
		Language        string    `json:"language" binding:"required"`
		Level           string    `json:"level"`
		Tier            string    `json:"tier" binding:"required"`
		ClassDateTime   time.Time `json:"class_date_time" binding:"required"`
		DurationMinutes int       `json:"duration_minutes"`
		RecurrenceType  string    `json:"recurrence_type"`
		OccurrenceCount int       `json:"occurrence_count"`
		AvailableSpots  int       `json:"available_spots" binding:"required"`
		TutorID         *uint     `json:"tutor_id"`
		GroupID         *string   `json:"group_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tier := access.ClassTier(body.Tier)
	if !tier.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown tier"})
		return
	}

	rec, ok := schedule.ParseRecurrence(body.RecurrenceType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown recurrence type"})
		return
	}
	count := body.OccurrenceCount
	if rec.IsRepeating() && count < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "occurrence_count must be at least 1 for recurring classes"})
		return
	}
	if body.AvailableSpots < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available_spots must be at least 1"})
		return
	}

	duration := body.DurationMinutes
	if duration == 0 {
		duration = 60
	}
	if count < 1 {
		count = 1
	}

	class := classmodel.Class{
		Title:           body.Title,
		Description:     body.Description,
		Language:        body.Language,
		Level:           body.Level,
		Tier:            string(tier),
		ClassDateTime:   body.ClassDateTime,
		DurationMinutes: duration,
		RecurrenceType:  string(rec),
		OccurrenceCount: count,
		AvailableSpots:  body.AvailableSpots,
		AdminID:         c.GetUint("user_id"),
		TutorID:         body.TutorID,
		GroupID:         body.GroupID,
	}

	// 1:1 premium classes get their own chat channel up front.
	if tier == access.TierIndividualPremium && channels != nil {
		channelID, err := channels.CreateChannel(c.Request.Context(), "class", body.Title)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class channel"})
			return
		}
		class.ChannelID = &channelID
	}

	if err := database.DB.Create(&class).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create class"})
		return
	}

	c.JSON(http.StatusCreated, class)
}

// BookClass runs the full enrollment protocol for the signed-in user.
func BookClass(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if coordinator == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Booking unavailable"})
		return
	}

	res, err := coordinator.BookClass(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		httputil.WriteEnrollmentError(c, err)
		return
	}

	resp := gin.H{
		"message": "Class booked",
		"booking": res,
	}
	if res.ChatJoinFailed {
		resp["warning"] = "Booked, but joining the class chat failed. You can retry from the class page."
	}
	c.JSON(http.StatusOK, resp)
}
