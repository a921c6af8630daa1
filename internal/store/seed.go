package store

import "github.com/garra-os/backend/internal/models"

// SeedOrders returns the initial call list the app boots with. The records
// mirror the municipal pilot data set, including each school's prior-visit
// history shown on the details screen.
func SeedOrders() []models.ServiceOrder {
	return []models.ServiceOrder{
		{
			ID:                  "1234",
			SchoolName:          "Escola Municipal Recife A",
			Description:         "Vazamento grave no banheiro dos professores",
			Address:             "Rua das Flores, 123 - Centro",
			Contact:             "Diretora Ana (81) 9999-0000",
			Priority:            models.PriorityHigh,
			Status:              models.StatusPending,
			LastVisitDate:       "10/11/2023",
			LastVisitTechnician: "Maria Oliveira",
			ServiceName:         "Troca de Tubulação",
			LastVisitPhotoURL:   "https://images.unsplash.com/photo-1607472586893-edb57bdc0e39?q=80&w=600&auto=format&fit=crop",
		},
		{
			ID:                  "1235",
			SchoolName:          "CMEI Pequeno Príncipe",
			Description:         "Vazamento na pia do refeitório",
			Address:             "Av. Brasil, 450 - Zona Norte",
			Contact:             "Sec. Paulo (81) 9888-1111",
			Priority:            models.PriorityMedium,
			Status:              models.StatusPending,
			LastVisitDate:       "10/09/2023",
			LastVisitTechnician: "Pedro Santos",
			ServiceName:         "Hidráulica Básica",
			LastVisitPhotoURL:   "https://images.unsplash.com/photo-1581244277943-fe4a9c777189?q=80&w=600&auto=format&fit=crop",
		},
		{
			ID:                  "1236",
			SchoolName:          "Escola Técnica Estadual",
			Description:         "Reparo na iluminação do ginásio",
			Address:             "Rua do Saber, 88 - Sul",
			Contact:             "Porteiro José",
			Priority:            models.PriorityLow,
			Status:              models.StatusPending,
			LastVisitDate:       "01/05/2023",
			LastVisitTechnician: "Carlos Silva",
			ServiceName:         "Iluminação",
			LastVisitPhotoURL:   "https://images.unsplash.com/photo-1565814329452-e1efa11c5b89?q=80&w=600&auto=format&fit=crop",
		},
	}
}
