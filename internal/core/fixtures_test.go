package core

// row builds a Row from alternating key/value pairs.
func row(index int, kv ...string) Row {
	cells := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		cells[kv[i]] = kv[i+1]
	}
	return Row{Index: index, Line: index + 3, Cells: cells}
}

func rawMaterial(index int, name, uom, cost, supplier, stock string) Row {
	return row(index,
		FieldName, name,
		FieldUoM, uom,
		FieldCost, cost,
		FieldSupplier, supplier,
		FieldStock, stock,
	)
}

func bomRow(index int, assembly, child, qty, uom string) Row {
	return row(index,
		FieldAssembly, assembly,
		FieldChild, child,
		FieldQuantity, qty,
		FieldUoM, uom,
	)
}
