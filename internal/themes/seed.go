package themes

import (
	"context"
	"fmt"
	"log"

	"github.com/opositores/backend/internal/models"
)

// The canonical syllabus: 23 general-part themes followed by 13 specific-part
// themes. Seeded once on startup when the themes table is empty.
var generalThemes = []string{
	"La Constitución Española de 1978: estructura, contenido, reforma",
	"Derechos y deberes fundamentales: garantía, suspensión",
	"El Tribunal Constitucional: organización, atribuciones",
	"La Corona: funciones, sucesión, regencia, refrendo",
	"El poder legislativo: Cortes Generales, funcionamiento, competencias",
	"El poder judicial: principios, organización del sistema judicial",
	"El poder ejecutivo: Presidente, Gobierno, relaciones con Cortes",
	"La Administración General del Estado: principios, órganos",
	"Organización territorial del Estado: CCAA, Estatutos, competencias",
	"Instituciones de la Unión Europea: estructura, competencias",
	"Fuentes del derecho de la Unión Europea y ordenamiento español",
	"Ministerio de Inclusión, Seguridad Social y Migraciones",
	"Fuentes del Derecho Administrativo: concepto, clases, jerarquía",
	"El acto administrativo: concepto, elementos, efectos, validez",
	"Procedimiento administrativo común: iniciación, instrucción, resolución",
	"Recursos administrativos y jurisdicción contencioso-administrativa",
	"Contratos del sector público: preparación, adjudicación, efectos",
	"Organización administrativa electrónica, procedimiento electrónico",
	"Régimen jurídico del personal al servicio de las Administraciones",
	"Protección de datos personales y derechos digitales",
	"Igualdad, políticas de género, discapacidad y dependencia",
	"Principios de buen gobierno, transparencia y acceso a información",
	"Régimen Jurídico del Sector Público, Ley 40/2015",
}

var specificThemes = []string{
	"Seguridad Social en la Constitución y Ley General de Seguridad Social",
	"Campo de aplicación: regímenes generales y especiales",
	"Normas sobre afiliación, altas, bajas, efectos, convenios especiales",
	"Cotización: bases, tipos, liquidación, regímenes especiales",
	"Gestión recaudatoria: obligaciones, medios de pago, control",
	"Recaudación en vía ejecutiva: procedimiento, embargos, oposición",
	"Acción protectora: prestaciones y clasificación, incompatibilidades",
	"Incapacidad temporal y permanente contributiva: requisitos, cuantía",
	"Protección por nacimiento y cuidado del menor",
	"Jubilación en régimen contributivo: requisitos, cálculo, modalidades",
	"Riesgo de muerte y supervivencia: viudedad, orfandad",
	"Prestaciones no contributivas y asistenciales",
	"Recursos generales del sistema: patrimonios, gestión financiera",
}

// SeedDefaultThemes inserts the canonical theme list if none exist yet.
func (s *Store) SeedDefaultThemes(ctx context.Context) error {
	count, err := s.CountThemes(ctx)
	if err != nil {
		return fmt.Errorf("count themes: %w", err)
	}
	if count > 0 {
		log.Println("Themes already exist, skipping seed")
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	order := 0
	for i, name := range generalThemes {
		order++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO themes (code, name, part, sort_order) VALUES ($1, $2, $3, $4)`,
			fmt.Sprintf("GENERAL_%02d", i+1), name, models.PartGeneral, order,
		)
		if err != nil {
			return fmt.Errorf("seed general theme: %w", err)
		}
	}
	for i, name := range specificThemes {
		order++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO themes (code, name, part, sort_order) VALUES ($1, $2, $3, $4)`,
			fmt.Sprintf("SPECIFIC_%02d", i+1), name, models.PartSpecific, order,
		)
		if err != nil {
			return fmt.Errorf("seed specific theme: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	log.Printf("Seeded %d themes", len(generalThemes)+len(specificThemes))
	return nil
}
