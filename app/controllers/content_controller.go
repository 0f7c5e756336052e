package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareNestHQ/CareNest/app/models"
	"github.com/CareNestHQ/CareNest/app/repository"
	"github.com/CareNestHQ/CareNest/internal/pkg/usercontext"
)

// Public content surface: CMS pages, blog, FAQ, testimonials and the care
// service catalog are all readable without a login.

// HandleGetPage returns one active CMS page by slug.
func HandleGetPage(c *fiber.Ctx) error {
	page, err := repository.GetGlobalFactory().GetPageRepository().GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "page not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load page")
	}
	return jsonSuccess(c, "", page)
}

// HandleListPages returns all active CMS pages.
func HandleListPages(c *fiber.Ctx) error {
	pages, err := repository.GetGlobalFactory().GetPageRepository().GetActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load pages")
	}
	return jsonSuccess(c, "", pages)
}

// HandleListBlogPosts returns published blog posts.
func HandleListBlogPosts(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	posts, err := repository.GetGlobalFactory().GetBlogRepository().GetPublished(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load blog posts")
	}
	return jsonSuccess(c, "", posts)
}

// HandleGetBlogPost returns one published blog post by slug.
func HandleGetBlogPost(c *fiber.Ctx) error {
	post, err := repository.GetGlobalFactory().GetBlogRepository().GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "blog post not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load blog post")
	}
	if !post.Published {
		return jsonError(c, fiber.StatusNotFound, "blog post not found")
	}
	return jsonSuccess(c, "", post)
}

// HandleListFaqs returns active FAQ entries in display order.
func HandleListFaqs(c *fiber.Ctx) error {
	faqs, err := repository.GetGlobalFactory().GetFaqRepository().GetActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load FAQ entries")
	}
	return jsonSuccess(c, "", faqs)
}

// HandleListTestimonials returns active testimonials.
func HandleListTestimonials(c *fiber.Ctx) error {
	testimonials, err := repository.GetGlobalFactory().GetTestimonialRepository().GetActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load testimonials")
	}
	return jsonSuccess(c, "", testimonials)
}

// HandleListCareServices returns the active care service catalog.
func HandleListCareServices(c *fiber.Ctx) error {
	services, err := repository.GetGlobalFactory().GetCareServiceRepository().GetActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load care services")
	}
	return jsonSuccess(c, "", services)
}

// HandleGetCareService returns one active care service by slug.
func HandleGetCareService(c *fiber.Ctx) error {
	service, err := repository.GetGlobalFactory().GetCareServiceRepository().GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "care service not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load care service")
	}
	return jsonSuccess(c, "", service)
}

// Admin content management below.

type pageRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Content  string `json:"content"`
	IsActive *bool  `json:"is_active"`
}

// HandleAdminCreatePage creates a CMS page.
func HandleAdminCreatePage(c *fiber.Ctx) error {
	var req pageRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	repo := repository.GetGlobalFactory().GetPageRepository()
	if exists, _ := repo.SlugExists(req.Slug); exists {
		return jsonError(c, fiber.StatusConflict, "slug already in use")
	}
	page := &models.Page{Title: req.Title, Slug: req.Slug, Content: req.Content, IsActive: true}
	if req.IsActive != nil {
		page.IsActive = *req.IsActive
	}
	if err := page.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid page data")
	}
	if err := repo.Create(page); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create page")
	}
	return jsonCreated(c, "page created", page)
}

// HandleAdminUpdatePage updates a CMS page.
func HandleAdminUpdatePage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid page id")
	}
	var req pageRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	repo := repository.GetGlobalFactory().GetPageRepository()
	page, err := repo.GetByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "page not found")
	}
	if req.Slug != "" && req.Slug != page.Slug {
		if exists, _ := repo.SlugExistsExceptID(req.Slug, id); exists {
			return jsonError(c, fiber.StatusConflict, "slug already in use")
		}
		page.Slug = req.Slug
	}
	if req.Title != "" {
		page.Title = req.Title
	}
	if req.Content != "" {
		page.Content = req.Content
	}
	if req.IsActive != nil {
		page.IsActive = *req.IsActive
	}
	if err := page.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid page data")
	}
	if err := repo.Update(page); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update page")
	}
	return jsonSuccess(c, "page updated", page)
}

// HandleAdminDeletePage deletes a CMS page.
func HandleAdminDeletePage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid page id")
	}
	if err := repository.GetGlobalFactory().GetPageRepository().Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete page")
	}
	return jsonSuccess(c, "page deleted", nil)
}

type blogPostRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Content   string `json:"content"`
	Published *bool  `json:"published"`
}

// HandleAdminCreateBlogPost creates a blog post authored by the caller.
func HandleAdminCreateBlogPost(c *fiber.Ctx) error {
	var req blogPostRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	repo := repository.GetGlobalFactory().GetBlogRepository()
	if exists, _ := repo.SlugExists(req.Slug); exists {
		return jsonError(c, fiber.StatusConflict, "slug already in use")
	}
	post := &models.BlogPost{
		Title:    req.Title,
		Slug:     req.Slug,
		Content:  req.Content,
		AuthorID: usercontext.GetUserID(c),
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if err := repo.Create(post); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create blog post")
	}
	return jsonCreated(c, "blog post created", post)
}

// HandleAdminUpdateBlogPost updates a blog post.
func HandleAdminUpdateBlogPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid blog post id")
	}
	var req blogPostRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	repo := repository.GetGlobalFactory().GetBlogRepository()
	post, err := repo.GetByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "blog post not found")
	}
	if req.Slug != "" && req.Slug != post.Slug {
		if exists, _ := repo.SlugExistsExceptID(req.Slug, id); exists {
			return jsonError(c, fiber.StatusConflict, "slug already in use")
		}
		post.Slug = req.Slug
	}
	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if err := repo.Update(post); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update blog post")
	}
	return jsonSuccess(c, "blog post updated", post)
}

// HandleAdminDeleteBlogPost deletes a blog post.
func HandleAdminDeleteBlogPost(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid blog post id")
	}
	if err := repository.GetGlobalFactory().GetBlogRepository().Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete blog post")
	}
	return jsonSuccess(c, "blog post deleted", nil)
}

type careServiceRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// HandleAdminCreateCareService adds a catalog entry.
func HandleAdminCreateCareService(c *fiber.Ctx) error {
	var req careServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	repo := repository.GetGlobalFactory().GetCareServiceRepository()
	if exists, _ := repo.SlugExists(req.Slug); exists {
		return jsonError(c, fiber.StatusConflict, "slug already in use")
	}
	service := &models.CareService{Name: req.Name, Slug: req.Slug, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if err := service.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid care service data")
	}
	if err := repo.Create(service); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create care service")
	}
	return jsonCreated(c, "care service created", service)
}

// HandleAdminUpdateCareService updates a catalog entry.
func HandleAdminUpdateCareService(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid care service id")
	}
	var req careServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	repo := repository.GetGlobalFactory().GetCareServiceRepository()
	service, err := repo.GetByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "care service not found")
	}
	if req.Slug != "" && req.Slug != service.Slug {
		if exists, _ := repo.SlugExistsExceptID(req.Slug, id); exists {
			return jsonError(c, fiber.StatusConflict, "slug already in use")
		}
		service.Slug = req.Slug
	}
	if req.Name != "" {
		service.Name = req.Name
	}
	if req.Description != "" {
		service.Description = req.Description
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	if err := service.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid care service data")
	}
	if err := repo.Update(service); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update care service")
	}
	return jsonSuccess(c, "care service updated", service)
}

// HandleAdminDeleteCareService removes a catalog entry.
func HandleAdminDeleteCareService(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid care service id")
	}
	if err := repository.GetGlobalFactory().GetCareServiceRepository().Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete care service")
	}
	return jsonSuccess(c, "care service deleted", nil)
}

type faqRequest struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

// HandleAdminCreateFaq adds an FAQ entry.
func HandleAdminCreateFaq(c *fiber.Ctx) error {
	var req faqRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	faq := &models.Faq{Question: req.Question, Answer: req.Answer, SortOrder: req.SortOrder, IsActive: true}
	if req.IsActive != nil {
		faq.IsActive = *req.IsActive
	}
	if err := repository.GetGlobalFactory().GetFaqRepository().Create(faq); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create FAQ entry")
	}
	return jsonCreated(c, "FAQ entry created", faq)
}

// HandleAdminUpdateFaq updates an FAQ entry.
func HandleAdminUpdateFaq(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid FAQ id")
	}
	var req faqRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	repo := repository.GetGlobalFactory().GetFaqRepository()
	faq, err := repo.GetByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "FAQ entry not found")
	}
	if req.Question != "" {
		faq.Question = req.Question
	}
	if req.Answer != "" {
		faq.Answer = req.Answer
	}
	faq.SortOrder = req.SortOrder
	if req.IsActive != nil {
		faq.IsActive = *req.IsActive
	}
	if err := repo.Update(faq); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update FAQ entry")
	}
	return jsonSuccess(c, "FAQ entry updated", faq)
}

// HandleAdminDeleteFaq deletes an FAQ entry.
func HandleAdminDeleteFaq(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid FAQ id")
	}
	if err := repository.GetGlobalFactory().GetFaqRepository().Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete FAQ entry")
	}
	return jsonSuccess(c, "FAQ entry deleted", nil)
}

type testimonialRequest struct {
	AuthorName string `json:"author_name"`
	Quote      string `json:"quote"`
	Rating     int    `json:"rating"`
	IsActive   *bool  `json:"is_active"`
}

// HandleAdminCreateTestimonial adds a testimonial.
func HandleAdminCreateTestimonial(c *fiber.Ctx) error {
	var req testimonialRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Rating == 0 {
		req.Rating = 5
	}
	t := &models.Testimonial{AuthorName: req.AuthorName, Quote: req.Quote, Rating: req.Rating, IsActive: true}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if err := repository.GetGlobalFactory().GetTestimonialRepository().Create(t); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create testimonial")
	}
	return jsonCreated(c, "testimonial created", t)
}

// HandleAdminDeleteTestimonial deletes a testimonial.
func HandleAdminDeleteTestimonial(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid testimonial id")
	}
	if err := repository.GetGlobalFactory().GetTestimonialRepository().Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete testimonial")
	}
	return jsonSuccess(c, "testimonial deleted", nil)
}
