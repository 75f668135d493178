package main

import (
	"errors"
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"gala/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func seatingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tables", func(ctx *gin.Context) {
			var tables []models.Table
			gdb := db.GetDb()
			if err := gdb.Preload("Guests").Order("name asc").Find(&tables).Error; err != nil {
				log.Printf("Error retrieving Tables: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tables})
		}).
		GET("/tables/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var table models.Table
			gdb := db.GetDb()
			if err := gdb.Where(&models.Table{ID: params.ID}).Preload("Guests").First(&table).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": table})
		}).
		POST("/tables", func(ctx *gin.Context) {
			var body types.CreateTableRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			table := models.Table{
				Name:     body.Name,
				Slug:     slug.Make(body.Name),
				Capacity: body.Capacity,
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&table).Error
			}); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "a table with that name already exists"})
					return
				}
				log.Printf("Error creating Table: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": table.ID, "slug": table.Slug})
		}).
		DELETE("/tables/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			if err := gdb.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Guest{}).
					Where("table_id = ?", params.ID).
					Update("table_id", nil).Error; err != nil {
					return err
				}
				return tx.Delete(&models.Table{ID: params.ID}).Error
			}); err != nil {
				log.Printf("Error deleting Table [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/tables/assign", func(ctx *gin.Context) {
			var body types.AssignSeatRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := utils.AssignGuestToTable(body.GuestID, body.TableID); err != nil {
				log.Printf("Error assigning Guest [%d]: %s\n", body.GuestID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
