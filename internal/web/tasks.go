package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/todomanager/todomanager/internal/auth"
	"github.com/todomanager/todomanager/internal/handler/dto"
	"github.com/todomanager/todomanager/internal/model"
	"github.com/todomanager/todomanager/internal/service"
)

// dueDateLayout matches <input type="datetime-local">.
const dueDateLayout = "2006-01-02T15:04"

const badDueDateMessage = "Enter a valid date/time."

var errBadDueDate = errors.New("invalid due date")

// taskForm holds the submitted or stored values of the task form.
type taskForm struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
	Completed   bool
}

func formFromTask(task *model.Task) taskForm {
	f := taskForm{
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Completed:   task.Completed,
	}
	if task.DueDate != nil {
		f.DueDate = task.DueDate.UTC().Format(dueDateLayout)
	}
	return f
}

func parseTaskForm(r *http.Request) taskForm {
	return taskForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: r.PostFormValue("description"),
		DueDate:     strings.TrimSpace(r.PostFormValue("due_date")),
		Priority:    r.PostFormValue("priority"),
		Completed:   r.PostFormValue("completed") != "",
	}
}

// dueDate parses the form's due date as UTC. Empty means none.
func (f taskForm) dueDate() (*time.Time, error) {
	if f.DueDate == "" {
		return nil, nil
	}
	for _, layout := range []string{dueDateLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, f.DueDate, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errBadDueDate
}

// list handles GET /app/.
func (a *App) list(w http.ResponseWriter, r *http.Request) {
	a.renderList(w, r, http.StatusOK, a.newPage(w, r))
}

func (a *App) renderList(w http.ResponseWriter, r *http.Request, status int, p *page) {
	tasks, err := a.tasks.List(r.Context(), auth.UserIDFromContext(r.Context()), nil)
	if err != nil {
		a.serverError(w, err)
		return
	}
	p.Tasks = dto.ToTaskListResponse(tasks, a.now())
	a.render(w, status, "list", p)
}

// create handles POST /app/.
func (a *App) create(w http.ResponseWriter, r *http.Request) {
	form := parseTaskForm(r)
	p := a.newPage(w, r)
	p.Form = form

	due, err := form.dueDate()
	if err != nil {
		p.Errors = []string{badDueDateMessage}
		a.renderList(w, r, http.StatusBadRequest, p)
		return
	}

	_, err = a.tasks.Create(r.Context(), auth.UserIDFromContext(r.Context()), service.CreateTaskInput{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     due,
		Priority:    model.Priority(form.Priority),
		Completed:   form.Completed,
	})
	if err != nil {
		if msg := userMessage(err); msg != "" {
			p.Errors = []string{msg}
			a.renderList(w, r, http.StatusBadRequest, p)
			return
		}
		a.serverError(w, err)
		return
	}

	redirectWithFlash(w, r, Base+"/", "Todo created successfully!")
}

// loadTask fetches the routed task or writes a 404.
func (a *App) loadTask(w http.ResponseWriter, r *http.Request) (*model.Task, bool) {
	task, err := a.tasks.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, taskIDParam))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			http.Error(w, "Todo not found", http.StatusNotFound)
			return nil, false
		}
		a.serverError(w, err)
		return nil, false
	}
	return task, true
}

// updateForm handles GET /app/{id}/update/.
func (a *App) updateForm(w http.ResponseWriter, r *http.Request) {
	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}
	p := a.newPage(w, r)
	p.TaskID = task.ID
	p.Form = formFromTask(task)
	a.render(w, http.StatusOK, "update", p)
}

// update handles POST /app/{id}/update/. The form replaces every field.
func (a *App) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, taskIDParam)
	form := parseTaskForm(r)
	p := a.newPage(w, r)
	p.TaskID = id
	p.Form = form

	due, err := form.dueDate()
	if err != nil {
		p.Errors = []string{badDueDateMessage}
		a.render(w, http.StatusBadRequest, "update", p)
		return
	}

	priority := model.Priority(form.Priority)
	patch := model.TaskPatch{
		Title:        &form.Title,
		Description:  &form.Description,
		DueDate:      due,
		ClearDueDate: due == nil,
		Priority:     &priority,
		Completed:    &form.Completed,
	}

	_, err = a.tasks.Update(r.Context(), auth.UserIDFromContext(r.Context()), id, patch)
	switch {
	case err == nil:
		redirectWithFlash(w, r, Base+"/", "Todo updated successfully!")
	case errors.Is(err, service.ErrTaskNotFound):
		http.Error(w, "Todo not found", http.StatusNotFound)
	case userMessage(err) != "":
		p.Errors = []string{userMessage(err)}
		a.render(w, http.StatusBadRequest, "update", p)
	default:
		a.serverError(w, err)
	}
}

// deleteForm handles GET /app/{id}/delete/.
func (a *App) deleteForm(w http.ResponseWriter, r *http.Request) {
	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}
	p := a.newPage(w, r)
	p.TaskID = task.ID
	p.Form = formFromTask(task)
	a.render(w, http.StatusOK, "delete", p)
}

// deleteTask handles POST /app/{id}/delete/.
func (a *App) deleteTask(w http.ResponseWriter, r *http.Request) {
	err := a.tasks.Delete(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, taskIDParam))
	switch {
	case err == nil:
		redirectWithFlash(w, r, Base+"/", "Todo deleted successfully!")
	case errors.Is(err, service.ErrTaskNotFound):
		http.Error(w, "Todo not found", http.StatusNotFound)
	default:
		a.serverError(w, err)
	}
}

// toggle handles POST /app/{id}/toggle/.
func (a *App) toggle(w http.ResponseWriter, r *http.Request) {
	completed, err := a.tasks.Toggle(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, taskIDParam))
	switch {
	case err == nil:
		status := "marked as incomplete"
		if completed {
			status = "completed"
		}
		redirectWithFlash(w, r, Base+"/", "Todo "+status+"!")
	case errors.Is(err, service.ErrTaskNotFound):
		http.Error(w, "Todo not found", http.StatusNotFound)
	default:
		a.serverError(w, err)
	}
}
