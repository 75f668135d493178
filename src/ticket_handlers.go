package main

import (
	"fmt"
	"gala/src/types"
	"gala/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tickets/generate", func(ctx *gin.Context) {
			var body types.GenerateTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, terr, err := utils.GenerateTicket(body.RegistrationID, body.Regenerate)
			if terr != "" {
				log.Printf("Ticket generation refused for Registration [%d]: code=%s error=%v\n", body.RegistrationID, terr, err)
				status := http.StatusBadRequest
				if terr == types.REGISTRATION_NOT_FOUND {
					status = http.StatusNotFound
				}
				ctx.JSON(status, gin.H{"error": terr})
				return
			}
			if err != nil {
				log.Printf("Error generating ticket for Registration [%d]: %s\n", body.RegistrationID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		GET("/tickets/:id/download", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, terr, err := utils.GenerateTicket(params.ID, false)
			if terr != "" {
				status := http.StatusBadRequest
				if terr == types.REGISTRATION_NOT_FOUND {
					status = http.StatusNotFound
				}
				ctx.JSON(status, gin.H{"error": terr})
				return
			}
			if err != nil {
				log.Printf("Error retrieving ticket for Registration [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.FileAttachment(result.ImagePath, fmt.Sprintf("galaticket_%d.jpeg", params.ID))
		})
	return g
}
