/*
edbx - Exchange EDB extraction and PST synthesis toolkit.
Copyright © 2024 edbx contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <https://www.gnu.org/licenses/>.
*/

package msg

import (
	"sort"

	"github.com/edbxtool/edbx/internal/mapi"
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

// WriteNameToIDMap writes every named property AllocNamedID has
// assigned so far as a PC at NID_NAME_TO_ID_MAP, one entry per
// assigned ID holding that property's string name. Call
// this after every folder and message has been added, since named
// properties are discovered during message insertion.
func (b *Builder) WriteNameToIDMap() error {
	names := make([]string, 0, len(b.namedProps))
	for name := range b.namedProps {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return b.namedProps[names[i]] < b.namedProps[names[j]] })

	props := mapi.NewSet()
	for _, name := range names {
		id := b.namedProps[name]
		tag := mapi.Tag(uint32(id)<<16 | uint32(mapi.PT_UNICODE))
		props.PutStr(tag, name)
	}
	if props.Len() == 0 {
		// Nothing named was encountered; still emit an empty PC so the
		// NBT entry exists, matching the always-present NID_NAME_TO_ID_MAP.
		props.Put(mapi.Tag(uint32(0x8000)<<16|uint32(mapi.PT_LONG)), mapi.Long32(0))
	}
	spill, err := b.writePCNode(ndb.NID_NAME_TO_ID_MAP, props, 0)
	if err != nil {
		return err
	}
	if len(spill) > 0 {
		subBID, err := b.w.WriteSubnodeTree(spill)
		if err != nil {
			return err
		}
		b.w.ReplaceSubnode(ndb.NID_NAME_TO_ID_MAP, subBID)
	}
	return nil
}
