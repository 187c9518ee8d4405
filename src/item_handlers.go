package main

import (
	"net/http"

	"github.com/SrZeh/get-useapp-sub002/src/types"
	"github.com/SrZeh/get-useapp-sub002/src/utils"
	"github.com/gin-gonic/gin"
)

func itemHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/items/:id/calendar", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			days, err := utils.GetItemCalendar(ctx, params.ID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": days, "count": len(days)})
		}).
		POST("/fees/quote", func(ctx *gin.Context) {
			var body types.FeeQuoteRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			rateCents, err := utils.ParseCents(body.DailyRate)
			if err != nil {
				respondRejection(ctx, err)
				return
			}
			endExclusive, err := utils.NextDay(body.EndDate)
			if err != nil {
				respondRejection(ctx, err)
				return
			}
			days, err := utils.DiffDaysExclusive(body.StartDate, endExclusive)
			if err != nil {
				respondRejection(ctx, err)
				return
			}
			if days < 1 {
				respondRejection(ctx, types.NewValidationError("date range covers no billable days"))
				return
			}
			breakdown := utils.ComputeFees(rateCents * days)
			ctx.JSON(http.StatusOK, gin.H{"data": breakdown, "days": days})
		})
	return g
}
