package main

import (
	"gala/src/db"
	"gala/src/models"
	"gala/src/types"
	"gala/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payments", func(ctx *gin.Context) {
			var query struct {
				Status string `form:"status"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var payments []models.Payment
			gdb := db.GetDb()
			q := gdb.Model(&models.Payment{}).Order("created_at desc")
			if query.Status != "" {
				q = q.Where("status = ?", query.Status)
			}
			if err := q.Find(&payments).Error; err != nil {
				log.Printf("Error retrieving Payments: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payments})
		}).
		POST("/payments/confirm", func(ctx *gin.Context) {
			var body types.ConfirmPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reference, err := uuid.Parse(body.Reference)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment reference"})
				return
			}
			if err := utils.MarkPaymentPaid(reference, nil); err != nil {
				log.Printf("Error confirming payment [%s]: %s\n", reference, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
