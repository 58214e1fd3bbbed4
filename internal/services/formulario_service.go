package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"suministros-dashboard/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	ErrFormularioCerrado = errors.New("el formulario no está abierto")
	ErrIndiceInvalido    = errors.New("índice de producto fuera de rango")
	ErrCampoInvalido     = errors.New("campo no reconocido")
)

const (
	msgProductoObligatorio = "El nombre del producto es obligatorio."
	msgCantidadPositiva    = "La cantidad debe ser un número positivo."
	msgUnidadObligatoria   = "La unidad es obligatoria."
)

// ValidarFormulario revisa cada renglón; las llaves son campo_indice
func ValidarFormulario(v *validator.Validate, f models.Formulario) map[string]string {
	errores := make(map[string]string)
	if len(f.Productos) == 0 {
		errores["productos"] = "Agregue al menos un producto."
	}
	for i, p := range f.Productos {
		if v.Var(strings.TrimSpace(p.Producto), "required") != nil {
			errores[fmt.Sprintf("producto_%d", i)] = msgProductoObligatorio
		}
		cantidad, err := models.ParseCantidad(p.Cantidad)
		if err != nil || v.Var(cantidad, "gt=0") != nil {
			errores[fmt.Sprintf("cantidad_%d", i)] = msgCantidadPositiva
		}
		if v.Var(strings.TrimSpace(p.Unidad), "required") != nil {
			errores[fmt.Sprintf("unidad_%d", i)] = msgUnidadObligatoria
		}
	}
	return errores
}

// FormularioSolicitud estado del modal de nueva solicitud o edición
type FormularioSolicitud struct {
	mu         sync.Mutex
	abierto    bool
	modo       models.ModoFormulario
	editandoID models.ID
	formulario models.Formulario
	errores    map[string]string
	validator  *validator.Validate
}

func NewFormularioSolicitud() *FormularioSolicitud {
	return &FormularioSolicitud{
		modo:       models.ModoCrear,
		formulario: models.FormularioInicial(),
		errores:    make(map[string]string),
		validator:  validator.New(),
	}
}

// Abrir carga los datos iniciales o el borrador vacío y limpia errores
func (f *FormularioSolicitud) Abrir(inicial *models.Formulario, modo models.ModoFormulario, editandoID models.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if modo != models.ModoEditar {
		modo = models.ModoCrear
		editandoID = ""
	}
	f.formulario = models.FormularioInicial()
	if inicial != nil {
		f.formulario = inicial.Clonar()
		if len(f.formulario.Productos) == 0 {
			f.formulario.Productos = []models.ProductoFormulario{{}}
		}
		f.formulario.Prioridad = models.ParsePrioridad(string(f.formulario.Prioridad))
	}
	f.abierto = true
	f.modo = modo
	f.editandoID = editandoID
	f.errores = make(map[string]string)
}

// Cerrar reinicia todo el estado en un solo paso
func (f *FormularioSolicitud) Cerrar() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abierto = false
	f.modo = models.ModoCrear
	f.editandoID = ""
	f.formulario = models.FormularioInicial()
	f.errores = make(map[string]string)
}

// CambiarCampo prioridad o comentario
func (f *FormularioSolicitud) CambiarCampo(campo, valor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.abierto {
		return ErrFormularioCerrado
	}
	switch campo {
	case "prioridad":
		f.formulario.Prioridad = models.ParsePrioridad(valor)
	case "comentario":
		f.formulario.Comentario = valor
	default:
		return fmt.Errorf("%w: %s", ErrCampoInvalido, campo)
	}
	delete(f.errores, campo)
	return nil
}

// CambiarProducto cambia un campo del renglón y limpia su error
func (f *FormularioSolicitud) CambiarProducto(indice int, campo, valor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.abierto {
		return ErrFormularioCerrado
	}
	if indice < 0 || indice >= len(f.formulario.Productos) {
		return ErrIndiceInvalido
	}
	p := &f.formulario.Productos[indice]
	switch campo {
	case "producto":
		p.Producto = valor
	case "cantidad":
		p.Cantidad = valor
	case "unidad":
		p.Unidad = valor
	default:
		return fmt.Errorf("%w: %s", ErrCampoInvalido, campo)
	}
	delete(f.errores, fmt.Sprintf("%s_%d", campo, indice))
	return nil
}

// AgregarProducto agrega un renglón vacío al final
func (f *FormularioSolicitud) AgregarProducto() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.abierto {
		return ErrFormularioCerrado
	}
	f.formulario.Productos = append(f.formulario.Productos, models.ProductoFormulario{})
	return nil
}

// EliminarProducto no hace nada si solo queda un renglón
func (f *FormularioSolicitud) EliminarProducto(indice int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.abierto {
		return ErrFormularioCerrado
	}
	if len(f.formulario.Productos) <= 1 {
		return nil
	}
	if indice < 0 || indice >= len(f.formulario.Productos) {
		return ErrIndiceInvalido
	}
	productos := make([]models.ProductoFormulario, 0, len(f.formulario.Productos)-1)
	productos = append(productos, f.formulario.Productos[:indice]...)
	productos = append(productos, f.formulario.Productos[indice+1:]...)
	f.formulario.Productos = productos
	f.errores = recorrerErrores(f.errores, indice)
	return nil
}

// recorrerErrores quita los errores del renglón eliminado y baja un lugar los siguientes
func recorrerErrores(errores map[string]string, eliminado int) map[string]string {
	nuevos := make(map[string]string, len(errores))
	for llave, msg := range errores {
		campo, idx, ok := strings.Cut(llave, "_")
		if !ok {
			nuevos[llave] = msg
			continue
		}
		i, err := strconv.Atoi(idx)
		if err != nil {
			nuevos[llave] = msg
			continue
		}
		switch {
		case i < eliminado:
			nuevos[llave] = msg
		case i > eliminado:
			nuevos[fmt.Sprintf("%s_%d", campo, i-1)] = msg
		}
	}
	return nuevos
}

// Validar recalcula los errores; true si no hay ninguno
func (f *FormularioSolicitud) Validar() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errores = ValidarFormulario(f.validator, f.formulario)
	return len(f.errores) == 0
}

// FijarErrores errores detectados fuera del formulario (p. ej. al guardar)
func (f *FormularioSolicitud) FijarErrores(errores map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errores = make(map[string]string, len(errores))
	for k, v := range errores {
		f.errores[k] = v
	}
}

func (f *FormularioSolicitud) Formulario() models.Formulario {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formulario.Clonar()
}

func (f *FormularioSolicitud) Abierto() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.abierto
}

func (f *FormularioSolicitud) Modo() (models.ModoFormulario, models.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.modo, f.editandoID
}

func (f *FormularioSolicitud) Errores() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errores))
	for k, v := range f.errores {
		out[k] = v
	}
	return out
}

// Vista estado completo para el navegador
func (f *FormularioSolicitud) Vista() models.FormularioVista {
	f.mu.Lock()
	defer f.mu.Unlock()
	errores := make(map[string]string, len(f.errores))
	for k, v := range f.errores {
		errores[k] = v
	}
	return models.FormularioVista{
		Abierto:    f.abierto,
		Modo:       f.modo,
		EditandoID: f.editandoID,
		Formulario: f.formulario.Clonar(),
		Errores:    errores,
	}
}

// GuardarFormulario valida el borrador y lo envía según el modo.
// Solo cierra el formulario cuando el backend confirma.
func GuardarFormulario(ctx context.Context, f *FormularioSolicitud, store SolicitudStore) (*models.Solicitud, error) {
	if !f.Abierto() {
		return nil, ErrFormularioCerrado
	}
	if !f.Validar() {
		return nil, &ValidacionError{Errores: f.Errores()}
	}

	borrador := f.Formulario()
	modo, editandoID := f.Modo()

	var (
		sol *models.Solicitud
		err error
	)
	switch modo {
	case models.ModoEditar:
		sol, err = store.Actualizar(ctx, editandoID, borrador)
	default:
		sol, err = store.Crear(ctx, borrador)
	}
	if err != nil {
		var validacion *ValidacionError
		if errors.As(err, &validacion) {
			f.FijarErrores(validacion.Errores)
		}
		return nil, err
	}

	f.Cerrar()
	return sol, nil
}
