package main

import (
	"errors"
	"gala/src/config"
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func emailHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/email/templates", func(ctx *gin.Context) {
			var templates []models.EmailTemplate
			gdb := db.GetDb()
			if err := gdb.Order("name asc").Find(&templates).Error; err != nil {
				log.Printf("Error retrieving EmailTemplates: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": templates})
		}).
		POST("/email/templates", func(ctx *gin.Context) {
			var body types.CreateEmailTemplateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			template := models.EmailTemplate{
				Name:    body.Name,
				Slug:    slug.Make(body.Name),
				Subject: body.Subject,
				Body:    body.Body,
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&template).Error
			}); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "a template with that name already exists"})
					return
				}
				log.Printf("Error creating EmailTemplate: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": template.ID, "slug": template.Slug})
		}).
		PUT("/email/templates/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateEmailTemplateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Model(&models.EmailTemplate{}).
					Where("id = ?", params.ID).
					Updates(map[string]any{
						"name":    body.Name,
						"slug":    slug.Make(body.Name),
						"subject": body.Subject,
						"body":    body.Body,
					}).Error
			}); err != nil {
				log.Printf("Error updating EmailTemplate [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/email/schedule", func(ctx *gin.Context) {
			var body types.ScheduleEmailRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			sendAt, err := time.Parse(config.TIME_PARSE_FORMAT, body.SendAt)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			var template models.EmailTemplate
			if err := gdb.Where(&models.EmailTemplate{ID: body.TemplateID}).First(&template).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			scheduled := models.ScheduledEmail{
				TemplateID: template.ID,
				SendAt:     sendAt,
				State:      string(types.EMAIL_PENDING),
			}
			if body.Category != "" {
				scheduled.Category = &body.Category
			}
			if body.Status != "" {
				scheduled.Status = &body.Status
			}
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&scheduled).Error
			}); err != nil {
				log.Printf("Error scheduling email: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": scheduled.ID})
		}).
		GET("/email/scheduled", func(ctx *gin.Context) {
			var scheduled []models.ScheduledEmail
			gdb := db.GetDb()
			if err := gdb.Preload("Template").Order("send_at asc").Find(&scheduled).Error; err != nil {
				log.Printf("Error retrieving ScheduledEmails: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": scheduled})
		}).
		DELETE("/email/scheduled/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.
					Where("id = ? AND state = ?", params.ID, string(types.EMAIL_PENDING)).
					Delete(&models.ScheduledEmail{}).Error
			}); err != nil {
				log.Printf("Error cancelling ScheduledEmail [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
