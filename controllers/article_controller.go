package controllers

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rsscat/rsscat/models"
	"github.com/rsscat/rsscat/store"
)

const unclassified = "Unclassified"

type articleView struct {
	Title     string
	Link      string
	Published time.Time
	Category  string
	Content   template.HTML
}

// ArticleController renders the stored articles.
type ArticleController struct {
	store  *store.Store
	policy *bluemonday.Policy
}

func NewArticleController(st *store.Store) *ArticleController {
	// Feed summaries often carry markup; keep the safe subset.
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &ArticleController{store: st, policy: p}
}

// Index lists every article, oldest first.
func (ac *ArticleController) Index(c *gin.Context) {
	articles, err := ac.store.QueryAll(c.Request.Context())
	if err != nil {
		slog.Error("Failed to load articles", "error", err)
		c.String(http.StatusInternalServerError, "failed to load articles")
		return
	}

	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Articles": ac.views(articles),
	})
}

func (ac *ArticleController) views(articles []models.Article) []articleView {
	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		category := a.Category
		if category == "" {
			category = unclassified
		}
		views = append(views, articleView{
			Title:     a.Title,
			Link:      a.Link,
			Published: a.Published,
			Category:  category,
			Content:   template.HTML(ac.policy.Sanitize(a.Content)),
		})
	}
	return views
}
