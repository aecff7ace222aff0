package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"matrimony-server/internal/config"
	"matrimony-server/internal/middleware"
	"matrimony-server/internal/models"
	"matrimony-server/internal/utils"
)

// Most gallery uploads accepted in one request.
const maxGalleryUpload = 5

// ProfileHandler handles profile browsing and the premium view gate.
type ProfileHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(db *gorm.DB, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{DB: db, Cfg: cfg}
}

// ProfileWithImages is a profile plus its gallery, as returned to clients.
type ProfileWithImages struct {
	models.Profile
	AboutMe string                `json:"aboutMe"`
	Images  []models.ProfileImage `json:"images"`
}

// GetProfiles returns every profile for premium members and only the first
// few for free users.
func (h *ProfileHandler) GetProfiles(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.Select("is_premium").First(&user, "id = ?", userID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	query := h.DB.Order("created_at asc")
	if !user.IsPremium {
		query = query.Limit(h.Cfg.FreeProfileLimit)
	}

	var profiles []models.Profile
	if err := query.Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch profiles: "+err.Error())
		return
	}

	utils.Success(c, "Profiles fetched successfully", profiles)
}

// GetAllProfiles returns profile user ids only, so the frontend can show the
// total count past the free limit.
func (h *ProfileHandler) GetAllProfiles(c *gin.Context) {
	var profiles []models.Profile
	if err := h.DB.Select("id", "user_id").Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch profiles: "+err.Error())
		return
	}
	utils.Success(c, "Profiles fetched successfully", profiles)
}

// GetMyProfile returns the caller's own profile with its gallery.
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	profile, err := h.loadProfileWithImages(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Profile not found for this user")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", profile)
}

// GetSingleProfile returns one profile for the detail view. Free users get a
// bounded number of detail views; the counter only moves for them.
func (h *ProfileHandler) GetSingleProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	profileUserID := c.Param("userId")

	var viewer models.User
	if err := h.DB.Select("is_premium", "profile_views").First(&viewer, "id = ?", userID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	if !viewer.IsPremium && viewer.ProfileViews >= h.Cfg.FreeProfileLimit {
		c.JSON(403, gin.H{
			"message":      "You have reached your free profile view limit. Please subscribe to view more profiles.",
			"limitReached": true,
		})
		return
	}

	profile, err := h.loadProfileWithImages(profileUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !viewer.IsPremium {
		if err := h.DB.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("profile_views", gorm.Expr("profile_views + 1")).Error; err != nil {
			utils.InternalServerError(c, "Failed to record profile view: "+err.Error())
			return
		}
	}

	utils.Success(c, "Profile fetched successfully", profile)
}

func (h *ProfileHandler) loadProfileWithImages(userID string) (*ProfileWithImages, error) {
	var profile models.Profile
	if err := h.DB.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	var images []models.ProfileImage
	if err := h.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&images).Error; err != nil {
		return nil, err
	}

	return &ProfileWithImages{
		Profile: profile,
		AboutMe: profile.User.AboutMe,
		Images:  images,
	}, nil
}

// UploadMainPicture stores an uploaded file and points the profile at it.
func (h *ProfileHandler) UploadMainPicture(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	file, err := c.FormFile("profileImage")
	if err != nil {
		utils.BadRequest(c, "Please upload a file")
		return
	}

	imageURL, err := h.saveUpload(c, file, "profileImage")
	if err != nil {
		utils.InternalServerError(c, "Failed to store file: "+err.Error())
		return
	}

	if err := h.DB.Model(&models.Profile{}).Where("user_id = ?", userID).
		Update("image", imageURL).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile picture: "+err.Error())
		return
	}

	utils.Success(c, "Profile picture updated successfully", gin.H{"image": imageURL})
}

// SetMainPictureRequest selects an existing gallery image as the main picture.
type SetMainPictureRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// SetMainPicture points the profile at an already-uploaded image URL.
func (h *ProfileHandler) SetMainPicture(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req SetMainPictureRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.DB.Model(&models.Profile{}).Where("user_id = ?", userID).
		Update("image", req.ImageURL).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile picture: "+err.Error())
		return
	}

	utils.Success(c, "Profile picture updated successfully", gin.H{"image": req.ImageURL})
}

// UploadGalleryImages stores up to five files and inserts the gallery rows
// in one transaction, so a failed write leaves no orphaned rows.
func (h *ProfileHandler) UploadGalleryImages(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequest(c, "Invalid multipart form: "+err.Error())
		return
	}
	files := form.File["profileImages"]
	if len(files) == 0 {
		utils.BadRequest(c, "Please upload at least one file")
		return
	}
	if len(files) > maxGalleryUpload {
		utils.BadRequest(c, fmt.Sprintf("At most %d images may be uploaded at once", maxGalleryUpload))
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, file := range files {
			imageURL, err := h.saveUpload(c, file, "profileImages")
			if err != nil {
				return err
			}
			row := models.ProfileImage{UserID: userID, ImageURL: imageURL}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Server error during image upload: "+err.Error())
		return
	}

	var images []models.ProfileImage
	if err := h.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&images).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch images: "+err.Error())
		return
	}

	utils.Created(c, "Images uploaded successfully", gin.H{"images": images})
}

// DeleteGalleryImage removes a gallery row, its file on disk, and clears the
// main picture if it pointed at the deleted image.
func (h *ProfileHandler) DeleteGalleryImage(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	imageID := c.Param("imageId")

	var image models.ProfileImage
	if err := h.DB.Where("id = ? AND user_id = ?", imageID, userID).First(&image).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Image not found or you are not authorized to delete it")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&image).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).
			Where("user_id = ? AND image = ?", userID, image.ImageURL).
			Update("image", "").Error
	})
	if err != nil {
		utils.InternalServerError(c, "Server error during image deletion: "+err.Error())
		return
	}

	// Best-effort file removal; the row is already gone.
	_ = os.Remove(filepath.Join(h.Cfg.UploadsDir, filepath.Base(image.ImageURL)))

	utils.Success(c, "Image deleted successfully", nil)
}

// UpdateInterestsRequest carries the replacement interests list.
type UpdateInterestsRequest struct {
	Interests []string `json:"interests" binding:"required"`
}

// UpdateInterests replaces the profile's interests list.
func (h *ProfileHandler) UpdateInterests(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateInterestsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	encoded, err := json.Marshal(req.Interests)
	if err != nil {
		utils.BadRequest(c, "Interests must be an array of strings")
		return
	}

	if err := h.DB.Model(&models.Profile{}).Where("user_id = ?", userID).
		Update("interests", string(encoded)).Error; err != nil {
		utils.InternalServerError(c, "Failed to update interests: "+err.Error())
		return
	}

	utils.Success(c, "Interests updated successfully", nil)
}

// saveUpload writes a multipart file under the uploads directory with a
// generated name and returns its public relative URL.
func (h *ProfileHandler) saveUpload(c *gin.Context, file *multipart.FileHeader, field string) (string, error) {
	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s-%s%s", field, uuid.New().String(), ext)
	dst := filepath.Join(h.Cfg.UploadsDir, filename)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return "uploads/" + filename, nil
}
