package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	reviewapp "addisstay/internal/app/handlers/reviews"
	"addisstay/internal/app/queries"
)

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type reviewRequest struct {
	Rating  int      `json:"rating"`
	Comment string   `json:"comment"`
	Photos  []string `json:"photos"`
}

func (h *ReviewHandler) List(c *gin.Context) {
	query := reviewapp.ListReviewsQuery{
		ListingID: c.Param("id"),
		Sort:      c.Query("sort"),
		Limit:     parseInt(c.Query("limit")),
		Offset:    parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[reviewapp.ListReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := reviewapp.SubmitReviewCommand{
		ListingID: c.Param("id"),
		AuthorID:  p.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Photos:    req.Photos,
	}
	review, err := commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := reviewapp.MarkHelpfulCommand{ReviewID: c.Param("id"), UserID: p.ID}
	review, err := commands.Dispatch[reviewapp.MarkHelpfulCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
