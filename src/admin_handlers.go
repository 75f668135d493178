package main

import (
	"errors"
	"fmt"
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func staffLoginRoute(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/auth/login", func(ctx *gin.Context) {
		var body types.StaffLoginRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		email := strings.ToLower(strings.TrimSpace(body.Email))
		var user models.StaffUser
		gdb := db.GetDb()
		if err := gdb.Where("LOWER(email) = ?", email).First(&user).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Error retrieving StaffUser [%s]: %s\n", email, err.Error())
			}
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		expiresAt := time.Now().Add(12 * time.Hour)
		claims := types.Claims{
			Username: user.Email,
			Role:     user.Role,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   fmt.Sprint(user.ID),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		if err != nil {
			log.Printf("Error signing session token: %s\n", err.Error())
			ctx.Status(http.StatusInternalServerError)
			return
		}

		if err := gdb.
			Model(&models.StaffUser{}).
			Where("id = ?", user.ID).
			Update("last_active", time.Now()).Error; err != nil {
			log.Printf("Error updating last_active for StaffUser [%d]: %s\n", user.ID, err.Error())
		}

		ctx.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"expires_at": expiresAt.Format(time.RFC3339),
			"role":       user.Role,
		})
	})
	return g
}

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/dashboard", func(ctx *gin.Context) {
			gdb := db.GetDb()
			stats := gin.H{}

			var categoryCounts []struct {
				Category string `json:"category"`
				Count    int64  `json:"count"`
			}
			if err := gdb.
				Model(&models.Guest{}).
				Select("category, COUNT(*) as count").
				Group("category").
				Scan(&categoryCounts).Error; err != nil {
				log.Printf("Error counting guests by category: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			stats["guests_by_category"] = categoryCounts

			var statusCounts []struct {
				Status string `json:"status"`
				Count  int64  `json:"count"`
			}
			if err := gdb.
				Model(&models.Guest{}).
				Select("status, COUNT(*) as count").
				Group("status").
				Scan(&statusCounts).Error; err != nil {
				log.Printf("Error counting guests by status: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			stats["guests_by_status"] = statusCounts

			var registrations int64
			gdb.Model(&models.Registration{}).Where("cancelled_at IS NULL").Count(&registrations)
			stats["registrations"] = registrations

			var paid int64
			gdb.Model(&models.Payment{}).Where("status = ?", string(types.PAYMENT_PAID)).Count(&paid)
			stats["payments_paid"] = paid

			var pendingPayments int64
			gdb.Model(&models.Payment{}).Where("status = ?", string(types.PAYMENT_PENDING)).Count(&pendingPayments)
			stats["payments_pending"] = pendingPayments

			var revenue float64
			gdb.Model(&models.Payment{}).
				Where("status = ?", string(types.PAYMENT_PAID)).
				Select("COALESCE(SUM(amount), 0)").
				Scan(&revenue)
			stats["revenue"] = revenue

			var checkedIn int64
			gdb.Model(&models.Checkin{}).Where("NOT is_override").Count(&checkedIn)
			stats["checked_in"] = checkedIn

			var overrides int64
			gdb.Model(&models.Checkin{}).Where("is_override").Count(&overrides)
			stats["override_admissions"] = overrides

			ctx.JSON(http.StatusOK, gin.H{"data": stats})
		}).
		GET("/trail", func(ctx *gin.Context) {
			var logs []models.TrailLog
			gdb := db.GetDb()
			if err := gdb.Order("created_at desc").Limit(200).Find(&logs).Error; err != nil {
				log.Printf("Error retrieving TrailLogs: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": logs})
		})
	return g
}
