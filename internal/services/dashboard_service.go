package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"suministros-dashboard/internal/client"
	"suministros-dashboard/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const topProductos = 5

// DashboardService métricas del tablero del usuario
type DashboardService interface {
	Obtener(ctx context.Context) (*models.DashboardData, error)
}

type dashboardService struct {
	backend Backend
	tokens  client.TokenSource
	logger  *zap.Logger
}

func NewDashboardService(backend Backend, tokens client.TokenSource, logger *zap.Logger) DashboardService {
	return &dashboardService{
		backend: backend,
		tokens:  tokens,
		logger:  logger.With(zap.String("service", "dashboard")),
	}
}

// Obtener GET /dashboard/usuario
func (s *dashboardService) Obtener(ctx context.Context) (*models.DashboardData, error) {
	var data models.DashboardData
	if err := s.backend.Get(ctx, s.tokens.Token(), "/dashboard/usuario", &data); err != nil {
		s.logger.Warn("❌ Error al obtener dashboard", zap.String("operation", "obtener"), zap.Error(err))
		return nil, fmt.Errorf("error obteniendo dashboard: %w", err)
	}
	return &data, nil
}

// ResumirSolicitudes calcula los agregados del tablero sobre la colección local.
// La tasa de aprobación es el porcentaje de resueltas que no fueron rechazadas.
func ResumirSolicitudes(datos []models.Solicitud, pipeline models.Pipeline, ahora time.Time) models.ResumenSolicitudes {
	porStatus := make(map[models.Status]int)
	porPrioridad := make(map[models.Prioridad]int)
	porMes := make(map[string]int)
	delMes := 0
	mesActual := ahora.Format("2006-01")

	type acumulado struct {
		nombre string
		total  int
		veces  int
	}
	productos := make(map[string]*acumulado)

	for _, s := range datos {
		porStatus[s.Status]++
		porPrioridad[models.ParsePrioridad(string(s.Prioridad))]++

		if t, ok := ParseFechaHora(s.FechaHora); ok {
			mes := t.Format("2006-01")
			porMes[mes]++
			if mes == mesActual {
				delMes++
			}
		}

		vistos := make(map[string]bool)
		for _, sum := range s.Suministros {
			llave := strings.ToLower(strings.TrimSpace(sum.Nombre))
			if llave == "" {
				continue
			}
			acc, ok := productos[llave]
			if !ok {
				acc = &acumulado{nombre: strings.TrimSpace(sum.Nombre)}
				productos[llave] = acc
			}
			acc.total += sum.Cantidad
			if !vistos[llave] {
				acc.veces++
				vistos[llave] = true
			}
		}
	}

	resumen := models.ResumenSolicitudes{}
	for _, estado := range pipeline.Estados {
		resumen.EstadoSolicitudes = append(resumen.EstadoSolicitudes, models.ConteoStatus{
			Status:   estado.String(),
			Cantidad: porStatus[estado],
		})
	}
	for _, p := range []models.Prioridad{models.PrioridadMuyAlto, models.PrioridadAlto, models.PrioridadModerado} {
		resumen.SolicitudesPorPrioridad = append(resumen.SolicitudesPorPrioridad, models.ConteoPrioridad{
			Prioridad: string(p),
			Cantidad:  porPrioridad[p],
		})
	}

	meses := make([]string, 0, len(porMes))
	for mes := range porMes {
		meses = append(meses, mes)
	}
	sort.Strings(meses)
	for _, mes := range meses {
		resumen.SolicitudesPorMes = append(resumen.SolicitudesPorMes, models.ConteoMes{Mes: mes, Cantidad: porMes[mes]})
	}

	lista := make([]*acumulado, 0, len(productos))
	for _, acc := range productos {
		lista = append(lista, acc)
	}
	sort.Slice(lista, func(i, j int) bool {
		if lista[i].total != lista[j].total {
			return lista[i].total > lista[j].total
		}
		if lista[i].veces != lista[j].veces {
			return lista[i].veces > lista[j].veces
		}
		return lista[i].nombre < lista[j].nombre
	})
	for i, acc := range lista {
		if i >= topProductos {
			break
		}
		resumen.ProductosMasSolicitados = append(resumen.ProductosMasSolicitados, models.ProductoSolicitado{
			Nombre:          acc.nombre,
			TotalSolicitado: acc.total,
			VecesSolicitado: acc.veces,
		})
	}

	pendientes := porStatus[pipeline.Inicial]
	resueltas := len(datos) - pendientes
	tasa := decimal.Zero
	if resueltas > 0 {
		aprobadas := resueltas - porStatus[models.StatusRechazada]
		tasa = decimal.NewFromInt(int64(aprobadas)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(resueltas))).
			Round(2)
	}

	resumen.Metricas = models.MetricasDashboard{
		TotalSolicitudes:      len(datos),
		SolicitudesPendientes: pendientes,
		SolicitudesDelMes:     delMes,
		TasaAprobacion:        tasa,
	}
	return resumen
}
