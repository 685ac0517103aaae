package server

import (
	"errors"
	"strings"

	"chirp/posts"
	"chirp/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	log "github.com/sirupsen/logrus"
)

type pages struct {
	svc       FeedService
	renderer  *web.Renderer
	signInUrl string
}

func (p *pages) render(c *fiber.Ctx, status int, name string, data interface{}) error {
	c.Status(status)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	if err := p.renderer.Render(c, name, data); err != nil {
		log.WithFields(log.Fields{
			"template": name,
			"error":    err,
		}).Error("Failed to render template")
		return err
	}
	return nil
}

func (p *pages) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := web.LoadError
	if errors.Is(err, posts.ErrPostNotFound) || errors.Is(err, posts.ErrUserNotFound) {
		status = fiber.StatusNotFound
		message = "Not found"
	} else {
		log.WithFields(log.Fields{
			"path":  c.Path(),
			"error": err,
		}).Error("Failed to load page")
	}
	return p.render(c, status, "error_page", web.ErrorPage{Status: status, Message: message})
}

// composer builds the form for a signed in caller, nil for anonymous visitors
func (p *pages) composer(c *fiber.Ctx) *web.Composer {
	caller := CallerId(c)
	if caller == "" {
		return nil
	}

	composer := &web.Composer{}
	profile, err := p.svc.ProfileById(c.UserContext(), caller)
	if err != nil {
		log.WithFields(log.Fields{
			"user_id": caller,
			"error":   err,
		}).Warn("Could not load avatar for composer")
		return composer
	}
	composer.AvatarUrl = profile.ProfileImageUrl
	return composer
}

// indexPage includes the feed so the page is complete without scripts
func (p *pages) indexPage(c *fiber.Ctx, composer *web.Composer) web.IndexPage {
	page := web.IndexPage{
		SignInUrl: p.signInUrl,
		Composer:  composer,
	}

	entries, err := p.svc.GetAll(c.UserContext())
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Failed to load feed")
		page.FeedFailed = true
		return page
	}
	page.Entries = entries
	return page
}

func (p *pages) index(c *fiber.Ctx) error {
	return p.render(c, fiber.StatusOK, "index", p.indexPage(c, p.composer(c)))
}

func (p *pages) feed(c *fiber.Ctx) error {
	entries, err := p.svc.GetAll(c.UserContext())
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Failed to load feed")
		return p.render(c, fiber.StatusInternalServerError, "feed_error", nil)
	}
	return p.render(c, fiber.StatusOK, "feed", web.FeedView{Entries: entries})
}

// compose handles the form post when scripts are unavailable
func (p *pages) compose(c *fiber.Ctx) error {
	composer := p.composer(c)
	if composer == nil {
		if p.signInUrl == "" {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return c.Redirect(p.signInUrl, fiber.StatusSeeOther)
	}

	// The post may be kept past this request
	content := utils.CopyString(c.FormValue("content"))
	_, err := p.svc.Create(c.UserContext(), CallerId(c), content)
	if err == nil {
		postsCreated.Inc()
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	status := classify(err).status
	if status >= fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"user_id": CallerId(c),
			"error":   err,
		}).Error("Failed to create post")
	}

	composer.Input = content
	composer.Notification = web.CreateErrorMessage(err)
	return p.render(c, status, "index", p.indexPage(c, composer))
}

func (p *pages) post(c *fiber.Ctx) error {
	entry, err := p.svc.GetById(c.UserContext(), c.Params("id"))
	if err != nil {
		return p.renderError(c, err)
	}
	return p.render(c, fiber.StatusOK, "post", web.PostPage{Entry: entry})
}

// profile serves /@<username>; other single segment paths fall through
func (p *pages) profile(c *fiber.Ctx) error {
	handle := c.Params("handle")
	if !strings.HasPrefix(handle, "@") || len(handle) == 1 {
		return c.Next()
	}

	profile, err := p.svc.ProfileByUsername(c.UserContext(), strings.TrimPrefix(handle, "@"))
	if err != nil {
		return p.renderError(c, err)
	}

	entries, err := p.svc.GetByAuthor(c.UserContext(), profile.Id)
	if err != nil {
		return p.renderError(c, err)
	}

	return p.render(c, fiber.StatusOK, "profile", web.ProfilePage{
		Profile: profile,
		Entries: entries,
	})
}
