package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/salonlux/salon-booking/db"
	"github.com/salonlux/salon-booking/middleware"
	"github.com/salonlux/salon-booking/models"
	"github.com/salonlux/salon-booking/redis"
	"github.com/salonlux/salon-booking/utils"
)

// CreateStaff creates a staff account with its profile. Admin only.
func CreateStaff(c *fiber.Ctx) error {
	type StaffInput struct {
		Name           string              `json:"name"`
		Email          string              `json:"email"`
		Phone          string              `json:"phone"`
		Password       string              `json:"password"`
		Specialization string              `json:"specialization"`
		WorkingHours   models.WeekSchedule `json:"working_hours"`
	}

	input := new(StaffInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	var existing models.User
	if db.DB.Where("email = ?", input.Email).First(&existing).RowsAffected > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "User with this email already exists",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     models.RoleStaff,
	}
	profile := models.StaffProfile{
		Specialization: input.Specialization,
		WorkingHours:   input.WorkingHours,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create staff: " + err.Error(),
		})
	}

	user.Password = ""
	profile.User = user
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// GetAllStaff lists staff profiles with their services. Public, so customers
// can pick a staff member before booking.
func GetAllStaff(c *fiber.Ctx) error {
	var staff []models.StaffProfile
	q := db.DB.Preload("User").Preload("Services", "is_active = ?", true)
	if serviceID := c.Query("service_id"); serviceID != "" {
		q = q.Joins("JOIN staff_services ON staff_services.staff_profile_id = staff_profiles.id").
			Where("staff_services.service_id = ?", serviceID)
	}
	if err := q.Find(&staff).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	for i := range staff {
		staff[i].User.Password = ""
	}
	return c.JSON(staff)
}

func GetStaff(c *fiber.Ctx) error {
	var profile models.StaffProfile
	err := db.DB.Preload("User").Preload("Services", "is_active = ?", true).
		First(&profile, "id = ?", c.Params("id")).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Staff profile not found",
		})
	}
	profile.User.Password = ""
	return c.JSON(profile)
}

// UpdateWorkingHours replaces a staff member's weekly schedule. Allowed for
// the staff member themselves or an admin. Days absent from the map are
// closed.
func UpdateWorkingHours(c *fiber.Ctx) error {
	var profile models.StaffProfile
	if err := db.DB.First(&profile, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Staff profile not found",
		})
	}

	p := middleware.Principal(c)
	if !p.IsAdmin() && profile.UserID != p.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only edit your own working hours",
		})
	}

	var hours models.WeekSchedule
	if err := c.BodyParser(&hours); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := db.DB.Model(&profile).Update("working_hours", hours).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	// Cached availability is stale for every day of this staff member.
	redis.InvalidateStaff(c.Context(), profile.ID)

	profile.WorkingHours = hours
	return c.JSON(profile)
}

// AssignServices replaces the set of services a staff member offers. Admin
// only.
func AssignServices(c *fiber.Ctx) error {
	type AssignInput struct {
		ServiceIDs []string `json:"service_ids"`
	}

	var profile models.StaffProfile
	if err := db.DB.First(&profile, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Staff profile not found",
		})
	}

	input := new(AssignInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var services []models.Service
	if len(input.ServiceIDs) > 0 {
		if err := db.DB.Find(&services, "id IN ?", input.ServiceIDs).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if len(services) != len(input.ServiceIDs) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("unknown service ids: requested %d, found %d", len(input.ServiceIDs), len(services)),
			})
		}
	}

	if err := db.DB.Model(&profile).Association("Services").Replace(services); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	profile.Services = services
	return c.JSON(profile)
}

// UploadStaffPhoto stores the staff member's profile photo on Cloudinary.
func UploadStaffPhoto(c *fiber.Ctx) error {
	var profile models.StaffProfile
	if err := db.DB.First(&profile, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Staff profile not found",
		})
	}

	p := middleware.Principal(c)
	if !p.IsAdmin() && profile.UserID != p.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only edit your own profile photo",
		})
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "photo file is required",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer file.Close()

	url, err := utils.UploadToCloudinary(file, "staff_"+profile.ID, "staff_photos")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload photo: " + err.Error(),
		})
	}

	if err := db.DB.Model(&profile).Update("photo_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	profile.PhotoURL = url
	return c.JSON(profile)
}
