package ast

// DeclID, TypeID and ValID index the arenas of a Graph. The zero value of each
// is reserved as "none".
type (
	DeclID uint32
	TypeID uint32
	ValID  uint32
)

const (
	NoDecl DeclID = 0
	NoType TypeID = 0
	NoVal  ValID  = 0
)

func (id DeclID) IsValid() bool { return id != NoDecl }
func (id TypeID) IsValid() bool { return id != NoType }
func (id ValID) IsValid() bool  { return id != NoVal }
