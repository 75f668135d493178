package main

import (
	"gala/src/db"
	"gala/src/middlewares"
	"gala/src/models"
	"gala/src/types"
	"gala/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func checkinHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkin/validate", func(ctx *gin.Context) {
			var body types.ValidateTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			validation, err := utils.ValidateCheckin(body.Token)
			if err != nil {
				log.Printf("Error validating check-in: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, validation)
		}).
		POST("/checkin", func(ctx *gin.Context) {
			var body types.SubmitCheckinRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			session := middlewares.GetSession(ctx)
			result, err := utils.SubmitCheckin(body.RegistrationID, session, body.Override)
			if err != nil {
				log.Printf("Error submitting check-in for Registration [%d]: %s\n", body.RegistrationID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, result)
		}).
		GET("/checkins", func(ctx *gin.Context) {
			var checkins []models.Checkin
			gdb := db.GetDb()
			if err := gdb.Order("checked_in_at desc").Find(&checkins).Error; err != nil {
				log.Printf("Error retrieving Checkins: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": checkins})
		})
	return g
}
