package main

import (
	"context"
	"errors"
	"fmt"
	"gala/src/config"
	"gala/src/db"
	"gala/src/lib"
	"gala/src/models"
	"gala/src/types"
	"gala/src/utils"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// genericLinkMessage is returned by the link-request flow no matter what
// happened, so callers cannot discover which emails exist.
const genericLinkMessage = "If the address is on the guest list, a registration link is on its way."

func publicHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/apply", func(ctx *gin.Context) {
			limit, window := config.PublicRateLimit()
			key := fmt.Sprintf("ratelimit:apply:%s", ctx.ClientIP())
			exceeded, err := lib.RateLimitExceeded(context.Background(), key, limit, window)
			if err != nil {
				log.Printf("Error checking rate limit: %s\n", err.Error())
			}
			if exceeded {
				ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many applications. Please try again later."})
				return
			}
			var body types.ApplyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			guest := models.Guest{
				Name:     body.Name,
				Email:    strings.ToLower(strings.TrimSpace(body.Email)),
				Category: string(types.GUEST_APPLICANT),
				Status:   string(types.GUEST_PENDING_APPROVAL),
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&guest).Error
			}); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Do not reveal that the email is already known.
					ctx.JSON(http.StatusOK, gin.H{"message": "Your application has been received."})
					return
				}
				log.Printf("Error creating application: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Could not process your application."})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Your application has been received."})
		}).
		POST("/auth/request-link", func(ctx *gin.Context) {
			var body types.RequestLinkRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			email := strings.ToLower(strings.TrimSpace(body.Email))

			var guest models.Guest
			gdb := db.GetDb()
			err := gdb.Where("LOWER(email) = ?", email).First(&guest).Error
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					log.Printf("Error retrieving guest [%s]: %s\n", email, err.Error())
				}
				// Same response shape whether or not the guest exists.
				ctx.JSON(http.StatusOK, gin.H{"message": genericLinkMessage})
				return
			}

			limit, window := config.PublicRateLimit()
			key := fmt.Sprintf("ratelimit:link:%s", ctx.ClientIP())
			// A genuinely expired credential earns a fresh link without
			// counting against the window.
			if utils.CredentialExpired(&guest) {
				lib.ResetRateLimit(context.Background(), key)
			}
			exceeded, err := lib.RateLimitExceeded(context.Background(), key, limit, window)
			if err != nil {
				log.Printf("Error checking rate limit: %s\n", err.Error())
			}
			if exceeded {
				ctx.JSON(http.StatusOK, gin.H{"message": genericLinkMessage})
				return
			}

			hash, expiresAt, err := utils.IssueCredential(email)
			if err != nil {
				log.Printf("Error issuing credential for [%s]: %s\n", email, err.Error())
				ctx.JSON(http.StatusOK, gin.H{"message": genericLinkMessage})
				return
			}
			go func() {
				if err := utils.SendMagicLinkEmail(&guest, hash, expiresAt); err != nil {
					log.Printf("Error sending magic link to [%s]: %s\n", email, err.Error())
				}
			}()
			ctx.JSON(http.StatusOK, gin.H{"message": genericLinkMessage})
		})
	return g
}
